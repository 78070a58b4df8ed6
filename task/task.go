package task

import (
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
	"github.com/tsinghua-fib-lab/intersection-analyzer/figure"
	"github.com/tsinghua-fib-lab/intersection-analyzer/report"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/config"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/input"
)

// log 任务模块的日志记录器
var log = logrus.WithField("module", "task")

// Context 一次分析任务的上下文
// 功能：包含一次分析运行的配置与中间状态，替代全局变量
// 说明：各阶段严格串行，Context不可并发复用，但同一进程内
// 可为不同输入重复创建执行
type Context struct {
	// 配置
	cfg config.Config

	// 运行记录（加载阶段产出）
	record *analysis.SimulationRecord
	// 派生指标（计算阶段产出）
	metrics *analysis.Metrics
}

// NewContext 创建分析任务上下文
func NewContext(c config.Config) *Context {
	return &Context{cfg: c}
}

// Record 已加载的运行记录
func (ctx *Context) Record() *analysis.SimulationRecord {
	return ctx.record
}

// Metrics 已计算的派生指标
func (ctx *Context) Metrics() *analysis.Metrics {
	return ctx.metrics
}

// Run 执行完整分析流水线
// 功能：加载→派生→绘图→统计输出，全程串行
// 返回：任一阶段的错误，出错即中止（无重试、无部分输出保证）
// 算法说明：
// 1. 按配置加载结果记录并打印结果描述头
// 2. 计算派生指标（对齐、误差、距离、速度）
// 3. 渲染六面板分析图并落盘
// 4. 汇总统计量，打印并写入key_statistics.txt
func (ctx *Context) Run() error {
	r, err := input.Load(ctx.cfg)
	if err != nil {
		return err
	}
	ctx.record = r
	report.Print(report.Header(r))

	ctx.metrics = analysis.Derive(r)

	if _, err := figure.Render(r, ctx.metrics, figure.Options{
		Geometry: figure.Geometry{
			RoadWidth:  ctx.cfg.Geometry.RoadWidth,
			RoadLength: ctx.cfg.Geometry.RoadLength,
		},
		SafetyDistance: ctx.cfg.SafetyDistance,
		OutputDir:      ctx.cfg.Output.Dir,
	}); err != nil {
		return err
	}

	summary, err := ctx.metrics.Summarize(r)
	if err != nil {
		return err
	}
	report.Print("\n" + report.Block(summary))
	if _, err := report.WriteStatistics(ctx.cfg.Output.Dir, summary); err != nil {
		return err
	}
	log.Infof("analysis complete, outputs in %s", ctx.cfg.Output.Dir)
	return nil
}
