// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abi

import (
	"code.hybscloud.com/hostcall"
	"code.hybscloud.com/hostcall/kvstore"
)

var (
	errs   = hostcall.NewTable[hostcall.Error]("Error")
	kvErrs = hostcall.NewTable[kvstore.Error]("KVError")
)

// ErrorCode returns the code of an Error.
func ErrorCode(h Handle) uint32 {
	return uint32(errs.Borrow(h).Code())
}

// ErrorStatus returns the host status of an Error, zero unless the code is
// hostcall.CodeStatus.
func ErrorStatus(h Handle) uint32 {
	return uint32(errs.Borrow(h).Status())
}

// ErrorMessage returns the rendered message of an Error.
func ErrorMessage(h Handle) []byte {
	return []byte(errs.Borrow(h).Error())
}

// KVErrorCode returns the code of a KVError.
func KVErrorCode(h Handle) uint32 {
	return uint32(kvErrs.Borrow(h).Code())
}

// KVErrorMessage returns the rendered message of a KVError.
func KVErrorMessage(h Handle) []byte {
	return []byte(kvErrs.Borrow(h).Error())
}
