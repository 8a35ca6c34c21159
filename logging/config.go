package logging

import (
	"github.com/sirupsen/logrus"
	"io"
	"testing"
)

/*
Config 描述日志的输出方式。

	FileLevel 写入文件的最低级别；
	ConsoleLevel 输出到控制台的最低级别；
	FileDir 日志文件目录，为空时不写文件；
	DisableConsole 关闭控制台输出；
	ConsoleWriter 控制台输出目标，为空时使用 os.Stdout；
*/
type Config struct {
	FileLevel      logrus.Level
	ConsoleLevel   logrus.Level
	FileDir        string
	DisableConsole bool
	ConsoleWriter  io.Writer
}

type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

/*
GenerateTestConfig 生成测试用配置：不写文件，Debug 级别日志通过 t.Log 输出。
*/
func GenerateTestConfig(t testing.TB) *Config {
	return &Config{
		FileLevel:      logrus.DebugLevel,
		ConsoleLevel:   logrus.DebugLevel,
		FileDir:        "",
		DisableConsole: false,
		ConsoleWriter:  &testWriter{t: t},
	}
}
