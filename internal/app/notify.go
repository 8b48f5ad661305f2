package app

import (
	"github.com/coreos/go-systemd/v22/daemon"
)

const (
	notifyReady    = daemon.SdNotifyReady
	notifyStopping = daemon.SdNotifyStopping
)

type notifyFunc func(state string)

// sdNotify is a no-op outside systemd (NOTIFY_SOCKET unset).
func sdNotify(state string) {
	_, _ = daemon.SdNotify(false, state)
}
