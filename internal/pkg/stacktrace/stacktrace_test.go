package stacktrace_test

import (
	"testing"

	"github.com/shandysiswandi/webotp/internal/pkg/stacktrace"
	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/webotp/internal/webotp.(*Bridge).settle(...)
	/src/webotp/internal/webotp/bridge.go:241 +0x1d
github.com/shandysiswandi/webotp/internal/pkg/goroutine.(*Manager).Go.func1()
	/src/webotp/internal/pkg/goroutine/goroutine.go:77 +0x9a
created by sync.(*WaitGroup).Go
	/usr/local/go/src/sync/waitgroup.go:239 +0x7c
`)

	assert.Equal(t, []string{
		"internal/webotp/bridge.go:241",
		"internal/pkg/goroutine/goroutine.go:77",
	}, stacktrace.InternalPaths(stack))
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	assert.Empty(t, stacktrace.InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10 +0x1\n")))
}
