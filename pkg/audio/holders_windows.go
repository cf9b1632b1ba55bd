//go:build windows

package audio

import (
	"fmt"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
)

const audioSessionStateActive = 1

func findHolderPids() ([]uint32, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		// Already initialized on this thread is fine, everything else not.
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return nil, fmt.Errorf("failed to initialize ole: %w", err)
		}
	}
	defer ole.CoUninitialize()

	var de *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &de); err != nil {
		return nil, fmt.Errorf("cannot ceate IMMDeviceEnumerator instance: %w", err)
	}
	defer de.Release()

	var collection *wca.IMMDeviceCollection
	if err := de.EnumAudioEndpoints(wca.ECapture, wca.DEVICE_STATE_ACTIVE, &collection); err != nil {
		return nil, fmt.Errorf("cannot query capture devices: %w", err)
	}
	defer collection.Release()

	var count uint32
	if err := collection.GetCount(&count); err != nil {
		return nil, fmt.Errorf("cannot get count of capture devices: %w", err)
	}

	var result []uint32
	for i := uint32(0); i < count; i++ {
		pids, err := holderPidsOfDeviceAt(collection, i)
		if err != nil {
			return nil, err
		}
		result = append(result, pids...)
	}
	return result, nil
}

func holderPidsOfDeviceAt(collection *wca.IMMDeviceCollection, deviceIndex uint32) ([]uint32, error) {
	var device *wca.IMMDevice
	if err := collection.Item(deviceIndex, &device); err != nil {
		return nil, fmt.Errorf("cannot get capture device %d: %w", deviceIndex, err)
	}
	defer device.Release()

	var sessionManager *wca.IAudioSessionManager2
	if err := device.Activate(wca.IID_IAudioSessionManager2, wca.CLSCTX_ALL, nil, &sessionManager); err != nil {
		return nil, fmt.Errorf("cannot get session manager of capture device %d: %w", deviceIndex, err)
	}
	defer sessionManager.Release()

	var enumerator *wca.IAudioSessionEnumerator
	if err := sessionManager.GetSessionEnumerator(&enumerator); err != nil {
		return nil, fmt.Errorf("cannot get sessions of capture device %d: %w", deviceIndex, err)
	}
	defer enumerator.Release()

	var count int
	if err := enumerator.GetCount(&count); err != nil {
		return nil, fmt.Errorf("cannot get count of sessions of capture device %d: %w", deviceIndex, err)
	}

	var result []uint32
	for i := 0; i < count; i++ {
		pid, ok, err := activeHolderPidOf(enumerator, i)
		if err != nil {
			return nil, fmt.Errorf("cannot inspect session %d of capture device %d: %w", i, deviceIndex, err)
		}
		if ok {
			result = append(result, pid)
		}
	}
	return result, nil
}

func activeHolderPidOf(sessions *wca.IAudioSessionEnumerator, sessionIndex int) (uint32, bool, error) {
	var sessionControl *wca.IAudioSessionControl
	if err := sessions.GetSession(sessionIndex, &sessionControl); err != nil {
		return 0, false, err
	}
	defer sessionControl.Release()

	var state uint32
	if err := sessionControl.GetState(&state); err != nil {
		return 0, false, err
	}
	if state != audioSessionStateActive {
		return 0, false, nil
	}

	dispatch, err := sessionControl.QueryInterface(wca.IID_IAudioSessionControl2)
	if err != nil {
		return 0, false, err
	}
	sessionControl2 := (*wca.IAudioSessionControl2)(unsafe.Pointer(dispatch))
	defer sessionControl2.Release()

	// System sounds do not hold the microphone.
	if err := sessionControl2.IsSystemSoundsSession(); err == nil {
		return 0, false, nil
	}

	var pid uint32
	if err := sessionControl2.GetProcessId(&pid); err != nil {
		return 0, false, err
	}
	return pid, true, nil
}
