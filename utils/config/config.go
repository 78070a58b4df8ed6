package config

// 默认配置，与无参数运行时的行为保持一致
const (
	DefaultArchive        = "./result/test_0.npz" // 默认结果归档路径
	DefaultOutputDir      = "./result"            // 默认输出目录
	DefaultRoadWidth      = 4.0                   // 默认道路宽度（米）
	DefaultRoadLength     = 40.0                  // 默认道路长度（米）
	DefaultSafetyDistance = 3.5                   // 默认车间距安全阈值（米）
)

// Default 生成默认配置
// 功能：返回与无参数运行等价的配置对象
func Default() Config {
	return Config{
		Input:          InputPath{File: DefaultArchive},
		Output:         Output{Dir: DefaultOutputDir},
		Geometry:       Geometry{RoadWidth: DefaultRoadWidth, RoadLength: DefaultRoadLength},
		SafetyDistance: DefaultSafetyDistance,
	}
}

// FillDefaults 补全缺省配置项
// 功能：为配置文件中未出现的字段填入默认值
// 算法说明：
// 1. 输出目录为空则使用默认目录
// 2. 几何参数非正则使用默认宽度/长度
// 3. 安全阈值非正则使用默认阈值
func (c *Config) FillDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Geometry.RoadWidth <= 0 {
		c.Geometry.RoadWidth = DefaultRoadWidth
	}
	if c.Geometry.RoadLength <= 0 {
		c.Geometry.RoadLength = DefaultRoadLength
	}
	if c.SafetyDistance <= 0 {
		c.SafetyDistance = DefaultSafetyDistance
	}
}
