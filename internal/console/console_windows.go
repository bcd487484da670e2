//go:build windows

// Package console provides cross-platform console detection and signal
// handling. On Windows it detects whether the process was double-clicked
// from Explorer (GUI mode) or launched from a terminal, and sets up a
// console control handler for Ctrl+C that survives SDL3's
// runtime.LockOSThread() usage.
package console

import (
	"log"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"
	"unsafe"
)

var (
	kernel32                       = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleWindow           = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole               = kernel32.NewProc("AllocConsole")
	procFreeConsole                = kernel32.NewProc("FreeConsole")
	procGetStdHandle                = kernel32.NewProc("GetStdHandle")
	procCreateToolhelp32Snapshot    = kernel32.NewProc("CreateToolhelp32Snapshot")
	procProcess32First              = kernel32.NewProc("Process32First")
	procProcess32Next               = kernel32.NewProc("Process32Next")
	procOpenProcess                 = kernel32.NewProc("OpenProcess")
	procQueryFullProcessImageNameW  = kernel32.NewProc("QueryFullProcessImageNameW")
	procSetConsoleCtrlHandler       = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	th32csSnapProcess      = 0x00000002
	processQueryLimitedInfo = 0x1000
	maxPath                = 260
	ctrlCEvent             = 0
	ctrlBreakEvent         = 1
	stdOutputHandle        = ^uint32(0) - 11 + 1
	stdErrorHandle         = ^uint32(0) - 12 + 1
	stdInputHandle         = ^uint32(0) - 10 + 1
)

type processEntry32 struct {
	dwSize              uint32
	cntUsage            uint32
	th32ProcessID       uint32
	th32DefaultHeapID   uintptr
	th32ModuleID        uint32
	cntThreads          uint32
	th32ParentProcessID uint32
	pcPriClassBase      int32
	dwFlags             uint32
	szExeFile           [maxPath]uint16
}

// IsRunningFromConsole reports whether the process is attached to a
// terminal (true) or was launched by double-clicking from Explorer
// (false).
func IsRunningFromConsole() bool {
	if hasConsoleWindow() {
		if isLaunchedFromExplorer() {
			freeConsole()
			return false
		}
		return true
	}

	if isLaunchedFromExplorer() {
		return false
	}

	attachToParentConsole()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

func attachToParentConsole() {
	procAllocConsole.Call()
	redirectStdStreams()
}

func redirectStdStreams() {
	nStdout, _, _ := procGetStdHandle.Call(uintptr(stdOutputHandle))
	nStderr, _, _ := procGetStdHandle.Call(uintptr(stdErrorHandle))
	nStdin, _, _ := procGetStdHandle.Call(uintptr(stdInputHandle))

	if nStdout == 0 || nStderr == 0 {
		return
	}

	os.Stdout = os.NewFile(uintptr(nStdout), "/dev/stdout")
	os.Stderr = os.NewFile(uintptr(nStderr), "/dev/stderr")
	if nStdin != 0 {
		os.Stdin = os.NewFile(uintptr(nStdin), "/dev/stdin")
	}
	log.SetOutput(os.Stderr)
}

func isLaunchedFromExplorer() bool {
	parentPID := getParentProcessID(os.Getpid())
	if parentPID == 0 {
		return false
	}
	name := getProcessImageName(parentPID)
	if name == "" {
		return false
	}
	return isExplorerExe(name)
}

func getParentProcessID(pid int) int {
	handle, _, _ := procCreateToolhelp32Snapshot.Call(uintptr(th32csSnapProcess), 0)
	if handle == uintptr(syscall.InvalidHandle) {
		return 0
	}
	defer syscall.CloseHandle(syscall.Handle(handle))

	var entry processEntry32
	entry.dwSize = uint32(unsafe.Sizeof(entry))

	ret, _, _ := procProcess32First.Call(handle, uintptr(unsafe.Pointer(&entry)))
	if ret == 0 {
		return 0
	}
	for {
		if int(entry.th32ProcessID) == pid {
			return int(entry.th32ParentProcessID)
		}
		ret, _, _ = procProcess32Next.Call(handle, uintptr(unsafe.Pointer(&entry)))
		if ret == 0 {
			break
		}
	}
	return 0
}

func getProcessImageName(pid int) string {
	hProcess, _, _ := procOpenProcess.Call(uintptr(processQueryLimitedInfo), 0, uintptr(pid))
	if hProcess == 0 {
		return ""
	}
	defer syscall.CloseHandle(syscall.Handle(hProcess))

	var nameBuf [maxPath]uint16
	size := uint32(maxPath)
	ret, _, _ := procQueryFullProcessImageNameW.Call(hProcess, 0, uintptr(unsafe.Pointer(&nameBuf[0])), uintptr(unsafe.Pointer(&size)))
	if ret == 0 {
		return ""
	}
	return syscall.UTF16ToString(nameBuf[:size])
}

func isExplorerExe(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			path = path[i+1:]
			break
		}
	}
	return strings.EqualFold(path, "explorer.exe")
}

func freeConsole() {
	procFreeConsole.Call()
}

type consoleHandlerState struct {
	closed       int32
	shutdownChan chan struct{}
	callbackFn   uintptr
}

var globalHandlerState *consoleHandlerState

// SetupConsoleHandler installs a Windows console control handler that
// closes shutdownChan on Ctrl+C/Ctrl+Break, and returns a function that
// re-registers the handler (SDL3 may override it during init). No-op on
// non-Windows builds (see console_other.go).
func SetupConsoleHandler(shutdownChan chan struct{}) func() {
	globalHandlerState = &consoleHandlerState{shutdownChan: shutdownChan}

	globalHandlerState.callbackFn = syscall.NewCallback(func(ctrlType uint32) uintptr {
		if ctrlType == ctrlCEvent || ctrlType == ctrlBreakEvent {
			if atomic.CompareAndSwapInt32(&globalHandlerState.closed, 0, 1) {
				close(globalHandlerState.shutdownChan)
			}
			return 1
		}
		return 0
	})

	register := func() {
		if globalHandlerState == nil {
			return
		}
		if ret, _, _ := procSetConsoleCtrlHandler.Call(globalHandlerState.callbackFn, 1); ret == 0 {
			log.Printf("warning: failed to set Windows console control handler")
		}
	}
	register()
	return register
}

var _ = runtime.GOOS
