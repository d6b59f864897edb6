package phpengine

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperCaser = cases.Upper(language.Und)

// httpVarName converts a header name into its HTTP_<UPPER_SNAKE> $_SERVER
// key, e.g. "Accept-Language" -> "HTTP_ACCEPT_LANGUAGE".
func httpVarName(header string) string {
	snake := strings.ReplaceAll(header, "-", "_")
	return "HTTP_" + upperCaser.String(snake)
}

// computeServerVars builds the $_SERVER population set described in §4.5's
// register_server_variables. It is pure and build-tag free; both the cgo
// and nocgo SAPI implementations call it and push the result into whatever
// PHP-visible array representation they own.
//
// REQUEST_URI, QUERY_STRING, SCRIPT_FILENAME, PATH_TRANSLATED and
// REQUEST_METHOD come from the request-info struct populated in §4.8 step
// 7 (request_uri there is captured *pre-rewrite*, per §9's normative
// resolution of the original-vs-rewritten ambiguity). PHP_SELF, SCRIPT_NAME
// and PATH_INFO reflect the current (possibly rewritten) request path,
// since they describe the script actually dispatched to.
func computeServerVars(ctx *RequestContext, serverSoftware, serverName string) map[string]string {
	vars := make(map[string]string)
	req := ctx.Request()

	req.Headers().Each(func(name, value string) {
		vars[httpVarName(name)] = value
	})

	u := req.URL()
	vars["REQUEST_SCHEME"] = u.Scheme
	vars["CONTEXT_PREFIX"] = ""
	vars["SERVER_ADMIN"] = "webmaster@localhost"
	vars["GATEWAY_INTERFACE"] = "CGI/1.1"
	vars["PHP_SELF"] = u.Path
	vars["SCRIPT_NAME"] = u.Path
	vars["PATH_INFO"] = u.Path
	vars["SCRIPT_FILENAME"] = ctx.info.pathTranslated
	vars["PATH_TRANSLATED"] = ctx.info.pathTranslated
	vars["DOCUMENT_ROOT"] = ctx.Docroot()
	vars["CONTEXT_DOCUMENT_ROOT"] = ctx.Docroot()
	if serverName != "" {
		vars["SERVER_NAME"] = serverName
	} else if u.Hostname() != "" {
		vars["SERVER_NAME"] = u.Hostname()
	}
	vars["REQUEST_URI"] = ctx.info.requestURI
	vars["SERVER_PROTOCOL"] = "HTTP/1.1"
	vars["SERVER_SOFTWARE"] = serverSoftware

	if ls := req.LocalSocket(); ls != nil {
		vars["SERVER_ADDR"] = ls.Address
		vars["SERVER_PORT"] = strconv.Itoa(ls.Port)
	}
	if rs := req.RemoteSocket(); rs != nil {
		vars["REMOTE_ADDR"] = rs.Address
		vars["REMOTE_PORT"] = strconv.Itoa(rs.Port)
	}

	vars["REQUEST_METHOD"] = ctx.info.requestMethod
	if cookie, ok := req.Headers().Get("Cookie"); ok {
		vars["HTTP_COOKIE"] = cookie
	}
	vars["QUERY_STRING"] = ctx.info.queryString

	return vars
}

// apacheRequestHeaders builds the array returned by the core's
// apache_request_headers() built-in: one chosen (last) value per header
// key, matching upstream PHP's single-string-per-key contract (§6,
// supplemented from original_source/crates/php/src/sapi.rs).
func apacheRequestHeaders(ctx *RequestContext) map[string]string {
	out := make(map[string]string)
	ctx.Request().Headers().Each(func(name, value string) {
		out[name] = value
	})
	return out
}
