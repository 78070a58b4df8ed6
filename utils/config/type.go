package config

// InputPath 指定结果数据来源的配置（npz文件、MongoDB）
// 功能：定义结果归档的加载路径，支持多种数据源
// 说明：文件路径优先级高于MongoDB，二者必须至少配置一种
type InputPath struct {
	URI  string `yaml:"uri,omitempty"`  // MongoDB连接字符串
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	Name string `yaml:"name,omitempty"` // 结果文档选择器（name字段），为空则取第一条
	File string `yaml:"file,omitempty"` // npz文件路径（优先级高于MongoDB）
}

// Geometry 十字路口几何配置
// 功能：定义轨迹图背景所需的道路几何参数
type Geometry struct {
	RoadWidth  float64 `yaml:"road_width"`  // 道路宽度（米）
	RoadLength float64 `yaml:"road_length"` // 道路长度（米）
}

// Output 输出配置
type Output struct {
	Dir string `yaml:"dir"` // 输出目录，需已存在且可写
}

// Config YAML配置文件的根结构
// 功能：汇总分析器的输入、输出与绘图参数
// 说明：命令行位置参数的优先级高于配置文件
type Config struct {
	Input          InputPath `yaml:"input"`                     // 结果数据来源
	Output         Output    `yaml:"output"`                    // 输出目录
	Geometry       Geometry  `yaml:"geometry"`                  // 路口几何
	SafetyDistance float64   `yaml:"safety_distance,omitempty"` // 车间距安全阈值（米）
}
