package cli

import (
	"errors"
	"fmt"
)

var errNotLoggedIn = errors.New("not logged in; run `tugestor login --email ... --password ...`")

type invalidArgError struct {
	flag  string
	value string
	want  string
}

func (e invalidArgError) Error() string {
	return fmt.Sprintf("invalid %s %q (want %s)", e.flag, e.value, e.want)
}

func errInvalidArg(flag, value, want string) error {
	return invalidArgError{flag: flag, value: value, want: want}
}
