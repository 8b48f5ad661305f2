package motd

import "errors"

var (
	// ErrConfigDirectory means the config directory path is occupied by a non-directory.
	ErrConfigDirectory = errors.New("config directory unusable")
	// ErrConfigFileConflict means a default file could not be created because one appeared first.
	ErrConfigFileConflict = errors.New("config file already exists")
	// ErrConfigFileRead covers unreadable or badly encoded config files.
	ErrConfigFileRead = errors.New("config file unreadable")
	ErrTimerParse     = errors.New("invalid timer config")
	ErrMissingHost    = errors.New("no host bound")
	ErrAlreadyStarted = errors.New("already started")
)
