//go:build windows

package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

// S_FALSE is the COM "already initialized" success code.
const S_FALSE = 0x00000001

// windowsOSVersion returns the Windows self-description, preferring the WMI
// Win32_OperatingSystem caption and version and falling back to the
// kernel's RtlGetVersion numbers when COM is unusable.
func windowsOSVersion() string {
	if v, err := wmiOSVersion(); err == nil && v != "" {
		return v
	}
	return rtlOSVersion()
}

// wmiOSVersion queries Win32_OperatingSystem over COM.
func wmiOSVersion() (string, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) {
			return "", err
		}
		if code := oleErr.Code(); code != ole.S_OK && code != S_FALSE {
			return "", err
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return "", err
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return "", err
	}
	defer locator.Release()

	serviceRaw, err := oleutil.CallMethod(locator, "ConnectServer")
	if err != nil {
		return "", err
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery",
		"SELECT Caption, Version FROM Win32_OperatingSystem")
	if err != nil {
		return "", err
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	countVar, err := oleutil.GetProperty(result, "Count")
	if err != nil {
		return "", err
	}
	defer countVar.Clear()
	if countVar.Val == 0 {
		return "", errors.New("platform: empty Win32_OperatingSystem result")
	}

	itemRaw, err := oleutil.CallMethod(result, "ItemIndex", 0)
	if err != nil {
		return "", err
	}
	item := itemRaw.ToIDispatch()
	defer item.Release()

	caption, err := oleutil.GetProperty(item, "Caption")
	if err != nil {
		return "", err
	}
	defer caption.Clear()

	version, err := oleutil.GetProperty(item, "Version")
	if err != nil {
		return "", err
	}
	defer version.Clear()

	return strings.TrimSpace(caption.ToString() + " " + version.ToString()), nil
}

// rtlOSVersion reads the kernel version block directly. Unlike the
// GetVersionEx family it is not subject to manifest-based version lying.
func rtlOSVersion() string {
	info := windows.RtlGetVersion()
	return fmt.Sprintf("Windows %d.%d build %d",
		info.MajorVersion, info.MinorVersion, info.BuildNumber)
}
