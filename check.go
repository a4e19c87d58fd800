// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !hostcall_nocheck

package hostcall

// checked enables bookkeeping of retired handles and correlation ids so
// that use-after-release and double redemption are reported precisely.
const checked = true
