package goroutine

import (
	"runtime/debug"

	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
)

// SafeGo запускает горутину с перехватом panic.
// Используется для fire-and-forget задач: уведомления не должны ронять процесс.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithComponent("goroutine").
					Errorf("panic в горутине: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
