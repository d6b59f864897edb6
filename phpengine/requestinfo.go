package phpengine

// requestInfo mirrors the engine's per-request info struct (proto_num,
// method, query string, etc.) that the handler populates with duplicated
// strings before entering the request scope (§4.8 step 7). Kept as a plain
// Go struct shared by both engine builds instead of a cgo-specific type so
// the population logic in handler.go never needs a build tag.
type requestInfo struct {
	protoNum       int
	argc           int
	argv           []string
	headersRead    bool
	requestMethod  string
	queryString    string
	contentType    string
	cookieData     string
	requestURI     string
	pathTranslated string
	contentLength  int
}

const httpProto11 = 110
