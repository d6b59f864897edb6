//go:build !php_embed

package phpengine

import (
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// errBailout is returned by runMiniPHP when the script cannot be read at
// all, standing in for the real interpreter's longjmp-based bailout.
var errBailout = errors.New("phpengine: bailout")

// runMiniPHP is a deliberately tiny stand-in for a PHP engine, understood
// well enough to execute exactly the constructs the spec's literal
// end-to-end scenarios (S1-S6) use: echo of string/concatenation
// expressions, http_response_code(n), header("Name: value"),
// file_get_contents("php://input"), and a foreach over
// apache_request_headers(). Anything else is treated as a no-op statement,
// since the point is to exercise Handler's pipeline, not to implement PHP.
func runMiniPHP(path string, ctx *RequestContext) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errBailout
	}

	body := stripPHPTags(string(data))
	for _, stmt := range splitStatements(body) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := execStatement(stmt, ctx); err != nil {
			return err
		}
	}
	return nil
}

var phpOpenTag = regexp.MustCompile(`(?s)<\?php\s?`)
var phpCloseTag = regexp.MustCompile(`\?>\s*$`)

func stripPHPTags(src string) string {
	src = phpOpenTag.ReplaceAllString(src, "")
	src = phpCloseTag.ReplaceAllString(src, "")
	return src
}

// splitStatements splits on ';' outside of double-quoted strings.
func splitStatements(src string) []string {
	var stmts []string
	var cur strings.Builder
	inString := false
	escaped := false
	for _, r := range src {
		if inString {
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			cur.WriteRune(r)
		case ';':
			stmts = append(stmts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		stmts = append(stmts, cur.String())
	}
	return stmts
}

var (
	reHTTPResponseCode = regexp.MustCompile(`^http_response_code\(\s*(\d+)\s*\)$`)
	reHeader           = regexp.MustCompile(`^header\(\s*"([^"]*)"\s*\)$`)
	reEcho             = regexp.MustCompile(`^echo\s+(.*)$`)
	reForeachHeaders   = regexp.MustCompile(`^foreach\s*\(\s*apache_request_headers\(\)\s+as\s+\$(\w+)\s*=>\s*\$(\w+)\s*\)\s*echo\s+"([^"]*)"$`)
)

func execStatement(stmt string, ctx *RequestContext) error {
	if m := reHTTPResponseCode.FindStringSubmatch(stmt); m != nil {
		n, _ := strconv.Atoi(m[1])
		ctx.SetResponseStatus(n)
		return nil
	}
	if m := reHeader.FindStringSubmatch(stmt); m != nil {
		name, value, ok := strings.Cut(m[1], ":")
		if !ok {
			return nil
		}
		_ = ctx.AddResponseHeader(strings.TrimSpace(name), strings.TrimSpace(value))
		return nil
	}
	if m := reForeachHeaders.FindStringSubmatch(stmt); m != nil {
		keyVar, valVar, format := m[1], m[2], m[3]
		headers := apacheRequestHeaders(ctx)
		ctx.Request().Headers().Each(func(name, _ string) {
			value, ok := headers[name]
			if !ok {
				return
			}
			delete(headers, name)
			line := strings.ReplaceAll(format, "$"+keyVar, name)
			line = strings.ReplaceAll(line, "$"+valVar, value)
			line = unescapePHPString(line)
			ctx.WriteResponseBody([]byte(line))
		})
		return nil
	}
	if m := reEcho.FindStringSubmatch(stmt); m != nil {
		out, err := evalEchoExpr(m[1], ctx)
		if err != nil {
			return err
		}
		ctx.WriteResponseBody([]byte(out))
		return nil
	}
	// Unrecognized statement: no-op, matching the stub's deliberately
	// narrow vocabulary.
	return nil
}

// evalEchoExpr evaluates a '.'-concatenated sequence of string literals,
// $_SERVER["KEY"] lookups, and file_get_contents("php://input").
func evalEchoExpr(expr string, ctx *RequestContext) (string, error) {
	terms := splitConcat(expr)
	var out strings.Builder
	for _, term := range terms {
		term = strings.TrimSpace(term)
		switch {
		case strings.HasPrefix(term, `"`) && strings.HasSuffix(term, `"`):
			out.WriteString(unescapePHPString(term[1 : len(term)-1]))
		case term == `file_get_contents("php://input")`:
			out.Write(ctx.fullRemainingBody())
		case strings.HasPrefix(term, `$_SERVER[`):
			key := strings.Trim(strings.TrimSuffix(strings.TrimPrefix(term, `$_SERVER[`), `]`), `"'`)
			vars := computeServerVars(ctx, "embedphp", "")
			out.WriteString(vars[key])
		}
	}
	return out.String(), nil
}

// splitConcat splits a PHP '.' concatenation expression on '.' outside of
// double-quoted strings.
func splitConcat(expr string) []string {
	var parts []string
	var cur strings.Builder
	inString := false
	escaped := false
	for _, r := range expr {
		if inString {
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			cur.WriteRune(r)
		case '.':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

func unescapePHPString(s string) string {
	replacer := strings.NewReplacer(`\n`, "\n", `\"`, `"`, `\\`, `\`)
	return replacer.Replace(s)
}
