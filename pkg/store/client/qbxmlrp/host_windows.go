//go:build windows

package qbxmlrp

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/services/hosterr"
	"github.com/de-tools/ledger-sync/pkg/services/session"
)

const (
	progID = "QBXMLRP2.RequestProcessor"

	connTypeLocal = 1
	sFalse        = 0x00000001
)

type host struct {
	dispatch *ole.IDispatch
}

// Connect creates the request processor on the calling goroutine's OS
// thread. The thread stays locked until Release.
func Connect(ctx context.Context) (session.Host, error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, hostError("CoInitializeEx", err)
		}
	}

	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, hostError("CreateObject", err)
	}
	defer unknown.Release()

	dispatch, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, hostError("QueryInterface", err)
	}

	zerolog.Ctx(ctx).Debug().Str("prog_id", progID).Msg("request processor created")
	return &host{dispatch: dispatch}, nil
}

func (h *host) OpenConnection(_ context.Context, appID, appName string) error {
	if _, err := oleutil.CallMethod(h.dispatch, "OpenConnection2", appID, appName, connTypeLocal); err != nil {
		return hostError("OpenConnection2", err)
	}
	return nil
}

func (h *host) BeginSession(_ context.Context, companyFile string, mode session.OpenMode) (string, error) {
	v, err := oleutil.CallMethod(h.dispatch, "BeginSession", companyFile, fileOpenMode(mode))
	if err != nil {
		return "", hostError("BeginSession", err)
	}
	defer v.Clear()
	return v.ToString(), nil
}

func (h *host) ProcessRequest(_ context.Context, ticket, request string) (string, error) {
	v, err := oleutil.CallMethod(h.dispatch, "ProcessRequest", ticket, request)
	if err != nil {
		return "", hostError("ProcessRequest", err)
	}
	defer v.Clear()
	return v.ToString(), nil
}

func (h *host) EndSession(_ context.Context, ticket string) error {
	if _, err := oleutil.CallMethod(h.dispatch, "EndSession", ticket); err != nil {
		return hostError("EndSession", err)
	}
	return nil
}

func (h *host) CloseConnection(_ context.Context) error {
	if _, err := oleutil.CallMethod(h.dispatch, "CloseConnection"); err != nil {
		return hostError("CloseConnection", err)
	}
	return nil
}

func (h *host) Release() {
	if h.dispatch != nil {
		h.dispatch.Release()
		h.dispatch = nil
	}
	ole.CoUninitialize()
	runtime.UnlockOSThread()
}

// fileOpenMode maps to the processor's qbFileOpenMode enumeration.
func fileOpenMode(mode session.OpenMode) int32 {
	switch mode {
	case session.ModeSingleUser:
		return 0
	case session.ModeMultiUser:
		return 1
	default:
		return 2
	}
}

func hostError(op string, err error) error {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) {
		return &hosterr.HostError{
			Op:          op,
			Code:        uint32(oleErr.Code()),
			Description: oleErr.Description(),
		}
	}
	return errors.Wrapf(err, "%s failed", op)
}
