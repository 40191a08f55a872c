package core

// Error codes reference
//
// Fatal errors are mapped to an operator-facing message with a short code
// so a failed run can be diagnosed from a single log line.
//
//	REF001 - Invalid reference file         Patterns: "reference file", "decode yaml"
//	SRC001 - Source file not found          Patterns: "no such file or directory"
//	SRC002 - Missing required column        Sentinel: ErrMissingColumn
//	SRC003 - Unsupported source encoding    Patterns: "unsupported source encoding"
//	SRC004 - Malformed CSV                  Patterns: "parse error"
//	DB001  - Record already exists          Patterns: "duplicate entry", "duplicate key"
//	DB003  - Referenced row missing         Patterns: "foreign key constraint"
//	DB004  - Connection refused             Patterns: "connection refused"
//	DB005  - Access denied                  Patterns: "access denied", "password authentication failed"
//	DB006  - Timed out                      Sentinel: context.DeadlineExceeded
//	DB007  - Invalid connection string      Patterns: "parse mysql dsn", "cannot parse"
//	RUN001 - Cancelled                      Sentinel: context.Canceled
//	ERR000 - Unknown error                  Fallback
//
// Sentinels are checked with errors.Is before any pattern. Patterns are
// matched case-insensitively with strings.Contains; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage is the operator-facing rendition of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Stable reference code
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgMissingColumn = UserMessage{
		Message: "The export header is missing a required column",
		Action:  "Export the sheet again with the original column titles",
		Code:    "SRC002",
	}
	msgTimeout = UserMessage{
		Message: "The operation timed out",
		Action:  "Raise APPLY_TIMEOUT or check database load",
		Code:    "DB006",
	}
	msgCancelled = UserMessage{
		Message: "The run was cancelled before finishing",
		Action:  "No statements were committed; run the import again",
		Code:    "RUN001",
	}
	msgDuplicate = UserMessage{
		Message: "A record in the script already exists in the database",
		Action:  "The script was probably applied before; the transaction was rolled back",
		Code:    "DB001",
	}
)

var errorSentinels = []errorSentinel{
	{target: ErrMissingColumn, msg: msgMissingColumn},
	{target: context.DeadlineExceeded, msg: msgTimeout},
	{target: context.Canceled, msg: msgCancelled},
}

var errorPatterns = []errorPattern{
	// Reference tables
	{
		pattern: "reference file",
		msg: UserMessage{
			Message: "The reference file could not be used",
			Action:  "Fix or create the YAML file named in the error, or drop -references",
			Code:    "REF001",
		},
	},
	{
		pattern: "decode yaml",
		msg: UserMessage{
			Message: "The reference file could not be used",
			Action:  "Fix or create the YAML file named in the error, or drop -references",
			Code:    "REF001",
		},
	},

	// Source
	{
		pattern: "no such file or directory",
		msg: UserMessage{
			Message: "A file could not be found",
			Action:  "Check IMPORT_SOURCE_PATH or the -in flag",
			Code:    "SRC001",
		},
	},
	{
		pattern: "unsupported source encoding",
		msg: UserMessage{
			Message: "The source encoding is not supported",
			Action:  "Set IMPORT_SOURCE_ENCODING to utf-8 or windows-1252",
			Code:    "SRC003",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "The export is not a readable semicolon-delimited file",
			Action:  "Open it in a spreadsheet and save as CSV with ; separators",
			Code:    "SRC004",
		},
	},

	// Database
	{pattern: "duplicate entry", msg: msgDuplicate},
	{pattern: "duplicate key", msg: msgDuplicate},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "A referenced staff member, entry type or tariff does not exist",
			Action:  "Make the reference tables match the target database",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Check DATABASE_URL and that the server is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "access denied",
		msg: UserMessage{
			Message: "The database rejected the credentials",
			Action:  "Check the user and password in DATABASE_URL",
			Code:    "DB005",
		},
	},
	{
		pattern: "password authentication failed",
		msg: UserMessage{
			Message: "The database rejected the credentials",
			Action:  "Check the user and password in DATABASE_URL",
			Code:    "DB005",
		},
	},
	{
		pattern: "parse mysql dsn",
		msg: UserMessage{
			Message: "DATABASE_URL is not a valid connection string",
			Action:  "Use user:pass@tcp(host:3306)/db for mysql or a postgres:// URL",
			Code:    "DB007",
		},
	},
	{
		pattern: "cannot parse",
		msg: UserMessage{
			Message: "DATABASE_URL is not a valid connection string",
			Action:  "Use user:pass@tcp(host:3306)/db for mysql or a postgres:// URL",
			Code:    "DB007",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log line above for the technical error",
	Code:    "ERR000",
}

// MapError converts an error into an operator-facing message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
