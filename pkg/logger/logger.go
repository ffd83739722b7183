package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Output always goes to stdout as JSON;
// when path is non-empty the same stream is duplicated into a rolling file.
func New(path string) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"

	enc := zapcore.NewJSONEncoder(encCfg)
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
	}

	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(lj), zapcore.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func NewSugared(path string) (*zap.SugaredLogger, error) {
	log, err := New(path)
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
