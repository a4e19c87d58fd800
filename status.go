// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import "strconv"

// Status is the low-level status reported by the host runtime.
type Status uint32

const (
	StatusOK Status = iota
	StatusError
	StatusInval
	StatusBadF
	StatusBufLen
	StatusUnsupported
	StatusBadAlign
	StatusHTTPInvalid
	StatusHTTPUser
	StatusHTTPIncomplete
	StatusNone
	StatusHTTPHeadTooLarge
	StatusHTTPInvalidStatus
	StatusLimitExceeded
	StatusAgain

	statusCount
)

var statusText = [statusCount]string{
	StatusOK:                "success",
	StatusError:             "generic error",
	StatusInval:             "invalid argument",
	StatusBadF:              "invalid handle",
	StatusBufLen:            "buffer length error",
	StatusUnsupported:       "unsupported operation",
	StatusBadAlign:          "alignment error",
	StatusHTTPInvalid:       "invalid HTTP message",
	StatusHTTPUser:          "HTTP user error",
	StatusHTTPIncomplete:    "incomplete HTTP message",
	StatusNone:              "no value",
	StatusHTTPHeadTooLarge:  "HTTP head too large",
	StatusHTTPInvalidStatus: "invalid HTTP status",
	StatusLimitExceeded:     "limit exceeded",
	StatusAgain:             "try again",
}

// String returns the status name.
func (s Status) String() string {
	if s >= statusCount {
		return "unknown status " + strconv.FormatUint(uint64(s), 10)
	}
	return statusText[s]
}

// Err converts s into an error. StatusOK yields nil.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return statusError(s)
}

// Temporary reports whether the operation may succeed if tried again later.
func (s Status) Temporary() bool {
	return s == StatusAgain || s == StatusLimitExceeded
}
