package config

import "os"

func IsDebug() bool {
	return os.Getenv("GEMI_DEBUG") == "1"
}
