package engine

// pythonBuiltins names every builtin function, exception type and
// dunder attribute R-UNDEFINED must never flag, ported verbatim from the
// reference implementation's undefined-symbol checker.
var pythonBuiltins = stringSet(
	"print", "len", "range", "int", "str", "float", "bool", "list", "dict",
	"tuple", "set", "frozenset", "type", "isinstance", "issubclass", "hasattr",
	"getattr", "setattr", "delattr", "property", "staticmethod", "classmethod",
	"super", "object", "None", "True", "False", "abs", "all", "any", "ascii",
	"bin", "breakpoint", "bytearray", "bytes", "callable", "chr", "compile",
	"complex", "copyright", "credits", "delattr", "dir", "divmod", "enumerate",
	"eval", "exec", "exit", "filter", "format", "globals", "hash", "help",
	"hex", "id", "input", "iter", "license", "locals", "map", "max", "memoryview",
	"min", "next", "oct", "open", "ord", "pow", "quit", "repr", "reversed",
	"round", "slice", "sorted", "sum", "vars", "zip", "__import__",
	"NotImplemented", "Ellipsis", "__name__", "__file__", "__doc__",
	"__package__", "__spec__", "__loader__", "__builtins__",
	"Exception", "BaseException", "ValueError", "TypeError", "KeyError",
	"IndexError", "AttributeError", "ImportError", "ModuleNotFoundError",
	"FileNotFoundError", "OSError", "IOError", "RuntimeError", "StopIteration",
	"GeneratorExit", "SystemExit", "KeyboardInterrupt", "ArithmeticError",
	"ZeroDivisionError", "OverflowError", "FloatingPointError",
	"LookupError", "NameError", "UnboundLocalError", "SyntaxError",
	"IndentationError", "TabError", "SystemError", "UnicodeError",
	"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeTranslateError",
	"Warning", "DeprecationWarning", "PendingDeprecationWarning",
	"RuntimeWarning", "SyntaxWarning", "ResourceWarning", "FutureWarning",
	"ImportWarning", "UnicodeWarning", "BytesWarning", "UserWarning",
	"AssertionError", "NotImplementedError", "RecursionError",
	"StopAsyncIteration", "ConnectionError", "BrokenPipeError",
	"ConnectionAbortedError", "ConnectionRefusedError", "ConnectionResetError",
	"BlockingIOError", "ChildProcessError", "FileExistsError",
	"InterruptedError", "IsADirectoryError", "NotADirectoryError",
	"PermissionError", "ProcessLookupError", "TimeoutError",
	"dataclass", "field", "abstractmethod", "override",
	"Optional", "Union", "List", "Dict", "Tuple", "Set", "Any",
	"Callable", "Iterator", "Generator", "Iterable", "Sequence",
	"Mapping", "MutableMapping", "TypeVar", "Generic", "Protocol",
)

// pythonCommonGlobals are names that are always in scope inside a method
// or module (self/cls and the standard dunder module attributes) without
// ever appearing as an explicit symbol or import.
var pythonCommonGlobals = stringSet(
	"self", "cls", "__name__", "__file__", "__doc__", "__all__",
	"__version__", "__author__", "__package__",
)

// cStdlibFunctions are C standard library, POSIX and common runtime
// names R-UNDEFINED must never flag as missing, even though several of
// them (gets, strcpy, ...) are separately flagged by R-UNSAFE — being
// discouraged is not the same as being undefined.
var cStdlibFunctions = stringSet(
	"printf", "fprintf", "sprintf", "snprintf", "scanf", "fscanf", "sscanf",
	"vsprintf", "vsnprintf", "vscanf", "vfscanf", "vsscanf",
	"fopen", "fclose", "fread", "fwrite", "fgets", "fputs", "feof", "fseek", "ftell",
	"perror", "puts", "getchar", "putchar", "getc", "putc", "fgetc", "fputc",
	"gets", "gets_s", "rewind", "freopen", "tmpfile", "tmpnam", "tempnam",
	"setbuf", "setvbuf", "ungetc", "fflush", "ferror", "clearerr",
	"malloc", "calloc", "realloc", "free", "alloca",
	"exit", "abort", "atexit", "_exit", "at_quick_exit", "quick_exit",
	"system", "getenv", "secure_getenv",
	"abs", "labs", "llabs", "div", "ldiv", "lldiv",
	"rand", "srand", "random", "srandom", "drand48", "srand48",
	"atoi", "atol", "atoll", "atof",
	"strtol", "strtoul", "strtoll", "strtoull", "strtod", "strtof", "strtold",
	"qsort", "bsearch",
	"memcpy", "memset", "memmove", "memcmp", "memchr",
	"strcpy", "strncpy", "strcat", "strncat", "strcmp", "strncmp", "strlen",
	"strstr", "strchr", "strrchr", "strtok", "strtok_r",
	"strdup", "strndup", "stpcpy", "strlcpy", "strlcat",
	"bcopy", "bzero",
	"isalpha", "isdigit", "isalnum", "isspace", "isupper", "islower",
	"isprint", "iscntrl", "ispunct", "isxdigit", "isgraph",
	"toupper", "tolower",
	"time", "clock", "difftime", "mktime",
	"ctime", "ctime_r", "asctime", "asctime_r",
	"gmtime", "gmtime_r", "localtime", "localtime_r",
	"strftime",
	"fork", "vfork", "execl", "execle", "execlp", "execv", "execvp", "execve",
	"popen", "pclose", "wait", "waitpid",
	"pipe", "dup", "dup2",
	"signal", "sigaction", "raise", "kill",
	"open", "close", "read", "write", "lseek", "ioctl",
	"select", "poll",
	"getlogin", "getpwuid", "getuid", "geteuid",
	"sleep", "usleep", "nanosleep",
	"mkstemp", "mkdtemp",
	"va_start", "va_end", "va_arg", "va_copy",
	"assert", "sizeof", "offsetof",
	"NULL", "EOF", "main",
)

func stringSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
