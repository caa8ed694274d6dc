package logging

import (
	"go.uber.org/zap"
)

// Log — глобальный структурный логгер процесса.
// SLog — его sugared-вариант для простых сообщений.
var (
	Log  = zap.NewNop()
	SLog = Log.Sugar()
)

// Init настраивает глобальный логгер. dev = true включает
// человекочитаемый вывод разработчика вместо JSON.
func Init(dev bool) error {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	Log = logger
	SLog = logger.Sugar()
	return nil
}

// Sync сбрасывает буферы логгера; вызывается при завершении процесса.
func Sync() {
	_ = Log.Sync()
}
