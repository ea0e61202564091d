package attachment

import "errors"

// ErrUnreadable is returned when an attachment's contents cannot be read.
// The turn that carried the attachment is aborted before any session state
// changes, so the caller may simply retry.
var ErrUnreadable = errors.New("attachment unreadable")
