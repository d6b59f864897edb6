package phpengine

import (
	"sort"
	"strings"
)

// iniDefaults is the fixed INI override block from §4.5, applied at
// SAPI-init time by the php_embed build; the non-cgo build has no ini
// subsystem and ignores it. Order is insignificant; every key must be
// present.
var iniDefaults = []string{
	"error_reporting=4343",
	"ignore_repeated_errors=1",
	"display_errors=0",
	"display_startup_errors=0",
	"register_argc_argv=1",
	"log_errors=1",
	"implicit_flush=0",
	"memory_limit=128M",
	"output_buffering=0",
	"enable_post_data_reading=1",
	"html_errors=0",
	"max_execution_time=0",
	"max_input_time=-1",
}

// iniBlob renders iniDefaults merged with overrides (overrides win on key
// collision, and may add keys iniDefaults doesn't set at all) as the
// newline-joined blob handed to the interpreter's INI parser at SAPI
// construction. Keys are sorted so the blob is deterministic across calls
// with the same overrides. It is built each time the process-wide Sapi
// (§4.6) is constructed, which happens again after the last Handler has
// released the previous one.
func iniBlob(overrides map[string]string) string {
	merged := make(map[string]string, len(iniDefaults)+len(overrides))
	for _, line := range iniDefaults {
		key, value, _ := strings.Cut(line, "=")
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out strings.Builder
	for _, key := range keys {
		out.WriteString(key)
		out.WriteByte('=')
		out.WriteString(merged[key])
		out.WriteByte('\n')
	}
	return out.String()
}
