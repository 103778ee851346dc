//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package http

import "syscall"

// SO_REUSEPORT yo'q platformalarda faqat bitta worker portni egallaydi
func reusePortControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
