// 统计报告的格式化、打印与落盘
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
)

// log 报告模块的日志记录器
var log = logrus.WithField("module", "report")

// StatisticsFile 统计文本的输出文件名
const StatisticsFile = "key_statistics.txt"

// rule 60字符分隔线
var rule = strings.Repeat("=", 60)

// Header 生成结果描述头
// 功能：汇总一次运行的真值与结果标志，打印在统计块之前
// 参数：r-仿真运行记录
// 返回：多行文本（不带落盘格式约束，仅用于标准输出）
func Header(r *analysis.SimulationRecord) string {
	var sb strings.Builder
	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("Simulation Results Analysis\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "True Human Characteristic (theta): %s\n", r.TrueTheta)
	fmt.Fprintf(&sb, "True Human Rationality (beta): %.4f\n", r.TrueBeta)
	fmt.Fprintf(&sb, "Successfully Passed Intersection: %v\n", r.PassedIntersection)
	fmt.Fprintf(&sb, "Collision Occurred: %v\n", r.Collision)
	fmt.Fprintf(&sb, "Total Simulation Steps: %d\n", r.Steps())
	sb.WriteString(rule + "\n")
	return sb.String()
}

// Block 生成Key Statistics统计块
// 功能：按固定格式汇总统计量
// 参数：s-汇总统计量
// 返回：统计块文本，格式与落盘文件完全一致
// 说明：beta/theta保留4位小数，距离与速度保留2位小数
func Block(s analysis.Summary) string {
	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("Key Statistics\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Final Beta Estimation: %.4f\n", s.FinalBeta)
	fmt.Fprintf(&sb, "Beta Estimation Error (Final): %.4f\n", s.FinalBetaError)
	fmt.Fprintf(&sb, "Mean Beta Estimation Error: %.4f\n", s.MeanBetaError)
	fmt.Fprintf(&sb, "Std Beta Estimation Error: %.4f\n", s.StdBetaError)
	fmt.Fprintf(&sb, "Final Theta Probability: %.4f\n", s.FinalTheta)
	fmt.Fprintf(&sb, "Min Distance Between Vehicles: %.2f m\n", s.MinDistance)
	fmt.Fprintf(&sb, "Mean Distance Between Vehicles: %.2f m\n", s.MeanDistance)
	fmt.Fprintf(&sb, "Final Ego Velocity: %.2f km/h\n", s.FinalEgoSpeed)
	fmt.Fprintf(&sb, "Final Human Velocity: %.2f km/h\n", s.FinalHumanSpeed)
	sb.WriteString(rule + "\n")
	return sb.String()
}

// Print 将文本打印到标准输出
func Print(text string) {
	fmt.Print(text)
}

// WriteStatistics 将统计块写入输出目录
// 功能：在outputDir下生成key_statistics.txt
// 参数：outputDir-输出目录（需已存在），s-汇总统计量
// 返回：写入的文件路径与可能的错误
func WriteStatistics(outputDir string, s analysis.Summary) (string, error) {
	path := filepath.Join(outputDir, StatisticsFile)
	if err := os.WriteFile(path, []byte(Block(s)), 0o644); err != nil {
		return "", fmt.Errorf("write statistics: %w", err)
	}
	log.Infof("key statistics saved to: %s", path)
	return path, nil
}
