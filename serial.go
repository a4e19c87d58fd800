// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hostcall

import "code.hybscloud.com/atomix"

// Serial is a process-wide monotonically increasing identifier shared by
// handles and correlation ids. Zero is reserved for "absent".
type Serial = uint32

// counter is the global monotonic counter for serials.
var counter atomix.Uint32

// nextSerial returns the next serial, skipping zero on wrap-around.
func nextSerial() Serial {
	for {
		if s := counter.Add(1); s != 0 {
			return s
		}
	}
}
