// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fmtNumber formats n with thousands separators.
func fmtNumber(n int) string {
	if n < 0 {
		return "-" + fmtNumber(-n)
	}
	s := strconv.Itoa(n)
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// formatElapsed renders d as "42s" or "3m 5s".
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// remaining extrapolates the time left from the rate so far. There is no
// estimate until a tenth of the domains are done.
func remaining(done, total int, elapsed time.Duration) (time.Duration, bool) {
	if total <= 0 || done <= 0 || done >= total || done*10 < total {
		return 0, false
	}
	perDomain := elapsed / time.Duration(done)
	return perDomain * time.Duration(total-done), true
}
