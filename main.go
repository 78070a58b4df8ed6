package main

import (
	"encoding/base64"
	"flag"
	"os"
	"strconv"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-analyzer/task"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "analyzer")
)

// parseArgs 解析位置参数
// 功能：将位置参数覆盖到配置上
// 参数：c-基础配置，args-位置参数列表
// 说明：参数依次为归档路径、输出目录、道路宽度、道路长度，
// 后三者可省略；无参数时保持配置原值（默认分析./result/test_0.npz）
func parseArgs(c *config.Config, args []string) {
	if len(args) == 0 {
		return
	}
	c.Input.File = args[0]
	if len(args) > 1 {
		c.Output.Dir = args[1]
	}
	if len(args) > 2 {
		w, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			log.Panicf("bad road_width %q: %v", args[2], err)
		}
		c.Geometry.RoadWidth = w
	}
	if len(args) > 3 {
		l, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			log.Panicf("bad road_length %q: %v", args[3], err)
		}
		c.Geometry.RoadLength = l
	}
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	// 获取配置
	c := config.Default()
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	}
	if file != nil {
		c = config.Config{}
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			log.Panicf("config file load err: %v", err)
		}
		c.FillDefaults()
	}
	// 位置参数优先于配置文件
	parseArgs(&c, flag.Args())
	log.Infof("%+v", c)

	t := task.NewContext(c)
	if err := t.Run(); err != nil {
		log.Panicf("analysis failed: %v", err)
	}
}
