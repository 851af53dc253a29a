package logx

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

type Config struct {
	Dir        string
	Level      string
	Output     string
	KeepHours  uint
	RotateNum  int
	RotateSize uint64
}

// Init configures the process logger and returns a cleanup func that
// flushes and closes the backend.
func Init(c Config) (func(), error) {
	logger.SetSeverity(c.Level)

	switch c.Output {
	case "stderr", "":
		logger.LogToStderr()
	case "file":
		lb, err := logger.NewFileBackend(c.Dir)
		if err != nil {
			return nil, errors.WithMessage(err, "NewFileBackend failed")
		}

		if c.KeepHours != 0 {
			lb.SetRotateByHour(true)
			lb.SetKeepHours(c.KeepHours)
		} else if c.RotateNum != 0 {
			lb.Rotate(c.RotateNum, c.RotateSize*1024*1024)
		} else {
			return nil, errors.New("KeepHours and RotateNum both are 0")
		}

		logger.SetLogging(c.Level, lb)
	default:
		return nil, errors.Errorf("unsupported log output: %s", c.Output)
	}

	return func() {
		fmt.Println("logger exiting")
		logger.Close()
	}, nil
}
