package script

// Status codes are the fixed vocabulary scripts use to signal intent to
// their blocking-call shims. Their semantics belong to the hosting server;
// this package only fixes the numbering, which follows the classic
// reactor-server convention.
type Status int

const (
	OK       Status = 0
	Error    Status = -1
	Again    Status = -2
	Busy     Status = -3
	Done     Status = -4
	Declined Status = -5
	Abort    Status = -6
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Error:
		return "ERROR"
	case Again:
		return "AGAIN"
	case Busy:
		return "BUSY"
	case Done:
		return "DONE"
	case Declined:
		return "DECLINED"
	case Abort:
		return "ABORT"
	}
	return "UNKNOWN"
}

// Severity is a log level as exposed into script namespaces.
type Severity int

const (
	LogEmerg Severity = iota + 1
	LogAlert
	LogCrit
	LogErr
	LogWarn
	LogNotice
	LogInfo
	LogDebug
)

// Flags for output-producing shims.
const (
	SendLast  = 1
	SendFlush = 2
)
