package engine

import "github.com/snipe-lang/snipe/internal/types"

// unsafeEntry is one row of the R-UNSAFE table: category, rationale and
// suggested replacement for a single C library function. Content is
// ported verbatim from the reference implementation's safety checker.
type unsafeEntry struct {
	Category   string
	Reason     string
	Suggestion string
}

// removedFunctions are no longer part of the C standard (C11+) and emit
// ERROR rather than WARNING.
var removedFunctions = map[string]unsafeEntry{
	"gets": {
		Category:   "Removed from C Standard (C11+)",
		Reason:     "Removed in C11 — no bounds checking, guaranteed buffer overflow risk",
		Suggestion: "Use fgets(buf, size, stdin) instead",
	},
}

// unsafeFunctions are discouraged but still standard; they emit WARNING.
var unsafeFunctions = map[string]unsafeEntry{
	"strcpy": {
		Category:   "Unsafe String Handling",
		Reason:     "No bounds checking — writes past buffer if source is longer than destination",
		Suggestion: "Use strncpy() or strlcpy() instead",
	},
	"strcat": {
		Category:   "Unsafe String Handling",
		Reason:     "No bounds checking — concatenation can overflow destination buffer",
		Suggestion: "Use strncat() or strlcat() instead",
	},
	"stpcpy": {
		Category:   "Unsafe String Handling",
		Reason:     "No bounds checking — same risks as strcpy()",
		Suggestion: "Use strncpy() or strlcpy() instead",
	},
	"gets_s": {
		Category:   "Unsafe String Handling",
		Reason:     "Annex K optional function — not widely supported, still risky",
		Suggestion: "Use fgets(buf, size, stdin) instead",
	},
	"strtok": {
		Category:   "Unsafe String Handling",
		Reason:     "Uses internal static state — not thread-safe, modifies input string",
		Suggestion: "Use strtok_r() (POSIX) or manual parsing instead",
	},
	"strncpy": {
		Category:   "Unsafe String Handling",
		Reason:     "Does not guarantee null-termination if source >= n bytes",
		Suggestion: "Use strlcpy() or manually null-terminate after strncpy()",
	},
	"strncat": {
		Category:   "Unsafe String Handling",
		Reason:     "Easy to misuse — size parameter is remaining space, not total buffer size",
		Suggestion: "Use strlcat() or compute remaining size carefully",
	},
	"strdup": {
		Category:   "Unsafe String Handling",
		Reason:     "No input length limit — untrusted input can cause memory exhaustion",
		Suggestion: "Use strndup() with a max length, or validate input size first",
	},
	"sprintf": {
		Category:   "Unsafe Formatted Output",
		Reason:     "No bounds checking — format output can overflow destination buffer",
		Suggestion: "Use snprintf(buf, size, fmt, ...) instead",
	},
	"vsprintf": {
		Category:   "Unsafe Formatted Output",
		Reason:     "No bounds checking — variadic format output can overflow buffer",
		Suggestion: "Use vsnprintf(buf, size, fmt, ap) instead",
	},
	"scanf": {
		Category:   "Potentially Unsafe Input",
		Reason:     "Without field width limits, %s can overflow buffers",
		Suggestion: "Use fgets() + sscanf(), or limit field width (e.g. %99s)",
	},
	"fscanf": {
		Category:   "Potentially Unsafe Input",
		Reason:     "Without field width limits, %s can overflow buffers",
		Suggestion: "Use fgets() + sscanf() with bounded format specifiers",
	},
	"sscanf": {
		Category:   "Potentially Unsafe Input",
		Reason:     "Without field width limits, %s can overflow buffers",
		Suggestion: "Limit field width in format specifiers (e.g. %99s)",
	},
	"vscanf": {
		Category:   "Potentially Unsafe Input",
		Reason:     "Variadic version of scanf — same overflow risks without width limits",
		Suggestion: "Use fgets() + vsscanf() with bounded format specifiers",
	},
	"vfscanf": {
		Category:   "Potentially Unsafe Input",
		Reason:     "Variadic version of fscanf — same overflow risks without width limits",
		Suggestion: "Use fgets() + vsscanf() with bounded format specifiers",
	},
	"vsscanf": {
		Category:   "Potentially Unsafe Input",
		Reason:     "Variadic version of sscanf — same overflow risks without width limits",
		Suggestion: "Limit field width in format specifiers (e.g. %99s)",
	},
	"tmpnam": {
		Category:   "Temporary File (Race Condition Risk)",
		Reason:     "Race condition between name generation and file creation (TOCTOU)",
		Suggestion: "Use mkstemp() or tmpfile() instead",
	},
	"tempnam": {
		Category:   "Temporary File (Race Condition Risk)",
		Reason:     "Race condition between name generation and file creation (TOCTOU)",
		Suggestion: "Use mkstemp() or tmpfile() instead",
	},
	"tmpfile": {
		Category:   "Temporary File (Race Condition Risk)",
		Reason:     "Less risky than tmpnam() but still implementation-sensitive",
		Suggestion: "Use mkstemp() for full control over temp file creation",
	},
	"getenv": {
		Category:   "Memory / Environment Risk",
		Reason:     "Returns pointer to environment which can be attacker-controlled or modified",
		Suggestion: "Use secure_getenv() (glibc) or validate/sanitize the returned value",
	},
	"alloca": {
		Category:   "Memory Risk",
		Reason:     "Allocates on the stack — no failure indication, stack overflow risk",
		Suggestion: "Use malloc() / calloc() with proper size checks instead",
	},
	"rand": {
		Category:   "Weak Random Number Generation",
		Reason:     "Predictable PRNG — not suitable for security-sensitive contexts",
		Suggestion: "Use arc4random(), getrandom(), or /dev/urandom for secure randomness",
	},
	"srand": {
		Category:   "Weak Random Number Generation",
		Reason:     "Seeds the predictable rand() PRNG — not cryptographically secure",
		Suggestion: "Use arc4random() or getrandom() which don't need manual seeding",
	},
	"random": {
		Category:   "Weak Random Number Generation",
		Reason:     "Better than rand() but still not cryptographically secure",
		Suggestion: "Use arc4random() or getrandom() for security-sensitive contexts",
	},
	"drand48": {
		Category:   "Weak Random Number Generation",
		Reason:     "Predictable PRNG — not suitable for security-sensitive contexts",
		Suggestion: "Use arc4random() or getrandom() for secure randomness",
	},
	"atoi": {
		Category:   "Unsafe Type Conversion",
		Reason:     "No error detection — undefined behavior on overflow, no way to detect failure",
		Suggestion: "Use strtol() with errno checking instead",
	},
	"atol": {
		Category:   "Unsafe Type Conversion",
		Reason:     "No error detection — undefined behavior on overflow, no way to detect failure",
		Suggestion: "Use strtol() with errno checking instead",
	},
	"atoll": {
		Category:   "Unsafe Type Conversion",
		Reason:     "No error detection — undefined behavior on overflow, no way to detect failure",
		Suggestion: "Use strtoll() with errno checking instead",
	},
	"atof": {
		Category:   "Unsafe Type Conversion",
		Reason:     "No error detection — no way to distinguish '0.0' input from conversion failure",
		Suggestion: "Use strtod() with errno checking instead",
	},
	"system": {
		Category:   "Process Execution (Command Injection Risk)",
		Reason:     "Passes string to shell — vulnerable to command injection",
		Suggestion: "Use execve() or posix_spawn() with explicit argument arrays",
	},
	"popen": {
		Category:   "Process Execution (Command Injection Risk)",
		Reason:     "Passes string to shell — vulnerable to command injection",
		Suggestion: "Use pipe() + fork() + exec() with explicit argument arrays",
	},
	"execl": {
		Category:   "Process Execution Risk",
		Reason:     "Inherits environment — can be exploited via PATH or env manipulation",
		Suggestion: "Use execve() with explicit environment, or validate all arguments",
	},
	"execle": {
		Category:   "Process Execution Risk",
		Reason:     "Safer than execl() but still requires careful argument validation",
		Suggestion: "Validate all arguments and use absolute paths",
	},
	"execlp": {
		Category:   "Process Execution Risk",
		Reason:     "Searches PATH — attacker can place malicious binary in PATH",
		Suggestion: "Use execve() with absolute paths instead",
	},
	"execv": {
		Category:   "Process Execution Risk",
		Reason:     "Inherits environment — can be exploited via env manipulation",
		Suggestion: "Use execve() with explicit environment",
	},
	"execvp": {
		Category:   "Process Execution Risk",
		Reason:     "Searches PATH — attacker can place malicious binary in PATH",
		Suggestion: "Use execve() with absolute paths instead",
	},
	"execve": {
		Category:   "Process Execution Risk",
		Reason:     "Safest exec variant but still requires careful argument validation",
		Suggestion: "Validate all arguments and paths before calling",
	},
	"signal": {
		Category:   "Unsafe Signal Handling",
		Reason:     "Behavior varies across platforms — can cause race conditions",
		Suggestion: "Use sigaction() for reliable, portable signal handling",
	},
	"memcpy": {
		Category:   "Dangerous Memory Operations",
		Reason:     "Undefined behavior if source and destination buffers overlap",
		Suggestion: "Use memmove() if buffers may overlap, or verify non-overlap",
	},
	"memmove": {
		Category:   "Dangerous Memory Operations",
		Reason:     "Safer than memcpy() for overlapping buffers but still dangerous if size is wrong",
		Suggestion: "Always validate the size parameter against actual buffer sizes",
	},
	"memcmp": {
		Category:   "Dangerous Memory Operations",
		Reason:     "Not constant-time — unsafe for comparing secrets (timing side-channel attack)",
		Suggestion: "Use a constant-time comparison function for passwords/keys/tokens",
	},
	"bcopy": {
		Category:   "Legacy / Obsolete",
		Reason:     "Non-standard legacy BSD function — removed from POSIX.1-2008",
		Suggestion: "Use memmove() instead",
	},
	"bzero": {
		Category:   "Legacy / Obsolete",
		Reason:     "Deprecated BSD function — removed from POSIX.1-2008",
		Suggestion: "Use memset(buf, 0, size) instead",
	},
	"getc": {
		Category:   "Potentially Unsafe I/O",
		Reason:     "Macro implementation can evaluate stream argument multiple times",
		Suggestion: "Use fgetc() for side-effect-safe single character reads",
	},
	"putc": {
		Category:   "Potentially Unsafe I/O",
		Reason:     "Macro implementation can evaluate arguments multiple times",
		Suggestion: "Use fputc() for side-effect-safe single character writes",
	},
	"getchar": {
		Category:   "Potentially Unsafe I/O",
		Reason:     "No input size control — may block or read unbounded input",
		Suggestion: "Use fgets() for controlled input reading",
	},
	"putchar": {
		Category:   "Potentially Unsafe I/O",
		Reason:     "No output error checking by default",
		Suggestion: "Check return value or use fputc() with error handling",
	},
	"rewind": {
		Category:   "Potentially Unsafe I/O",
		Reason:     "Silently clears error indicator — hides I/O failures",
		Suggestion: "Use fseek(fp, 0, SEEK_SET) and check return value for errors",
	},
	"freopen": {
		Category:   "Potentially Unsafe I/O",
		Reason:     "Can redirect critical streams (stdin/stdout/stderr) unexpectedly",
		Suggestion: "Use fopen() for new streams; avoid redirecting standard streams",
	},
	"getlogin": {
		Category:   "Unreliable Environment Info",
		Reason:     "Not reliable — can be spoofed, may return NULL on some systems",
		Suggestion: "Use getpwuid(getuid()) for reliable user identification",
	},
	"setbuf": {
		Category:   "Legacy / Obsolete",
		Reason:     "Cannot report errors — if buffer is too small, undefined behavior",
		Suggestion: "Use setvbuf() which returns an error code on failure",
	},
	"ctime": {
		Category:   "Legacy / Obsolete (Not Thread-Safe)",
		Reason:     "Returns pointer to static internal buffer — not thread-safe",
		Suggestion: "Use ctime_r() (POSIX) or strftime() instead",
	},
	"asctime": {
		Category:   "Legacy / Obsolete (Not Thread-Safe)",
		Reason:     "Returns pointer to static internal buffer — not thread-safe",
		Suggestion: "Use asctime_r() (POSIX) or strftime() instead",
	},
	"gmtime": {
		Category:   "Legacy / Obsolete (Not Thread-Safe)",
		Reason:     "Returns pointer to static internal buffer — not thread-safe",
		Suggestion: "Use gmtime_r() (POSIX) instead",
	},
	"localtime": {
		Category:   "Legacy / Obsolete (Not Thread-Safe)",
		Reason:     "Returns pointer to static internal buffer — not thread-safe",
		Suggestion: "Use localtime_r() (POSIX) instead",
	},
}

// checkUnsafe implements R-UNSAFE: every call site to a table entry emits
// one diagnostic with the canned category/reason/suggestion text.
func checkUnsafe(refs []types.Reference, file string) []types.Diagnostic {
	var out []types.Diagnostic
	for _, ref := range refs {
		if ref.KindOfUse != types.RefCall && ref.KindOfUse != types.RefFormatCall {
			continue
		}
		if e, ok := removedFunctions[ref.Name]; ok {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code:    types.CodeUnsafeFunction,
				Message: unsafeMessage(ref.Name, e),
			})
			continue
		}
		if e, ok := unsafeFunctions[ref.Name]; ok {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityWarning,
				Code:    types.CodeUnsafeFunction,
				Message: unsafeMessage(ref.Name, e),
			})
		}
	}
	return out
}

func unsafeMessage(name string, e unsafeEntry) string {
	return "'" + name + "()' — " + e.Category + ". " + e.Reason + ". " + e.Suggestion + "."
}
