package input

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/npz"
)

// log 输入模块的日志记录器
var log = logrus.WithField("module", "input")

// 归档中必须存在的字段键
var requiredKeys = []string{
	"ego", "human", "beta", "theta", "t_beta", "t_theta", "PassInter", "Collision",
}

// fromArchive 将npz归档转换为结果记录
// 功能：取出全部必需字段并做类型转换与校验
// 参数：ar-已解码的npz归档
// 返回：记录与可能的错误
// 算法说明：
// 1. 一次性检查全部必需字段，缺失时给出单条描述性错误
// 2. 轨迹取为二维矩阵，估计序列取为一维序列
// 3. t_beta取标量浮点，t_theta取字符串标签，结果标志取布尔
func fromArchive(ar npz.Archive) (*analysis.SimulationRecord, error) {
	var missing []string
	for _, key := range requiredKeys {
		if _, ok := ar[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("archive missing required fields %v", missing)
	}

	r := &analysis.SimulationRecord{}
	var err error
	if r.Ego, err = ar["ego"].Matrix(); err != nil {
		return nil, fmt.Errorf("field ego: %w", err)
	}
	if r.Human, err = ar["human"].Matrix(); err != nil {
		return nil, fmt.Errorf("field human: %w", err)
	}
	if r.BetaEstimate, err = ar["beta"].FloatSlice(); err != nil {
		return nil, fmt.Errorf("field beta: %w", err)
	}
	if r.ThetaEstimate, err = ar["theta"].FloatSlice(); err != nil {
		return nil, fmt.Errorf("field theta: %w", err)
	}
	if r.TrueBeta, err = ar["t_beta"].Float(); err != nil {
		return nil, fmt.Errorf("field t_beta: %w", err)
	}
	tTheta, err := ar["t_theta"].String()
	if err != nil {
		return nil, fmt.Errorf("field t_theta: %w", err)
	}
	r.TrueTheta = analysis.ParseThetaType(tTheta)
	if r.PassedIntersection, err = ar["PassInter"].Bool(); err != nil {
		return nil, fmt.Errorf("field PassInter: %w", err)
	}
	if r.Collision, err = ar["Collision"].Bool(); err != nil {
		return nil, fmt.Errorf("field Collision: %w", err)
	}
	if err := checkRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

// checkRecord 校验记录形状
// 功能：检查轨迹非空且状态向量列数足够
// 说明：列数不足4时后续按列索引会越界，这里提前给出明确错误
func checkRecord(r *analysis.SimulationRecord) error {
	if len(r.Ego) == 0 || len(r.Human) == 0 {
		return fmt.Errorf("empty trajectory: ego %d steps, human %d steps", len(r.Ego), len(r.Human))
	}
	for name, traj := range map[string][][]float64{"ego": r.Ego, "human": r.Human} {
		for i, row := range traj {
			if len(row) < analysis.StateColumns {
				return fmt.Errorf("%s trajectory row %d has %d columns, need at least %d",
					name, i, len(row), analysis.StateColumns)
			}
		}
	}
	return nil
}
