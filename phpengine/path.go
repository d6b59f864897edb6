package phpengine

import (
	"os"
	"path/filepath"
	"strings"
)

// translatePath maps a request URI path to an on-disk PHP script under
// docroot (C1). docroot must already be absolute and canonicalized.
//
// Trailing-slash URIs prefer "<dir>/index.php"; failing that, the joined
// path itself is tried and accepted only if it is a regular file
// (§4.1/invariant 11). Non-trailing-slash URIs resolve to exactly one
// candidate — never an implicit index, matching invariant 12. The returned
// path has its symlinks resolved.
func translatePath(docroot, uriPath string) (string, error) {
	if !strings.HasPrefix(uriPath, "/") {
		return "", &RequestError{Kind: ExpectedAbsoluteRequestURI, Message: uriPath}
	}

	rel := strings.TrimPrefix(uriPath, "/")
	joined := filepath.Join(docroot, rel)
	if !withinDocroot(docroot, joined) {
		return "", &RequestError{Kind: ScriptNotFound, Path: joined}
	}

	// resolve accepts a candidate only if it is a regular file that still
	// lies under docroot once its symlinks are followed.
	resolve := func(candidate string) (string, bool) {
		if !isFile(candidate) {
			return "", false
		}
		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil || !withinDocroot(docroot, resolved) {
			return "", false
		}
		return resolved, true
	}

	if strings.HasSuffix(uriPath, "/") {
		if resolved, ok := resolve(filepath.Join(joined, "index.php")); ok {
			return resolved, nil
		}
		if resolved, ok := resolve(joined); ok {
			return resolved, nil
		}
		return "", &RequestError{Kind: ScriptNotFound, Path: joined}
	}

	if resolved, ok := resolve(joined); ok {
		return resolved, nil
	}
	return "", &RequestError{Kind: ScriptNotFound, Path: joined}
}

// withinDocroot enforces invariant 1: path-translation never resolves
// outside the canonicalized docroot, regardless of ".." segments or
// symlinks in the request path.
func withinDocroot(docroot, candidate string) bool {
	rel, err := filepath.Rel(docroot, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isFile(path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
