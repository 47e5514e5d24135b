package gemini

import "callscribe/pkg/logger"

func initTestLogger() error {
	return logger.Init(true)
}
