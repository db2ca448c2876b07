package resp

import (
	"fmt"

	"github.com/xy-planning-network/reqargs"
)

var (
	ErrDone        = fmt.Errorf("%w: request ctx done", reqargs.ErrUnexpected)
	ErrMissingData = reqargs.ErrMissingData
)
