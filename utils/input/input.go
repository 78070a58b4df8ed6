package input

import (
	"context"
	"fmt"

	"github.com/tsinghua-fib-lab/intersection-analyzer/analysis"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/config"
	"github.com/tsinghua-fib-lab/intersection-analyzer/utils/npz"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Load 加载一次仿真运行的结果记录
// 功能：根据配置从npz文件或MongoDB加载SimulationRecord
// 参数：c-分析器配置
// 返回：加载完成的记录与可能的错误
// 算法说明：
// 1. 配置了文件路径时从npz归档加载（优先级高于MongoDB）
// 2. 否则要求配置MongoDB连接串与库表，从结果集合加载
// 3. 两条路径共用同一套字段校验
func Load(c config.Config) (*analysis.SimulationRecord, error) {
	if c.Input.File != "" {
		return LoadFile(c.Input.File)
	}
	if c.Input.URI != "" {
		return loadMongo(c.Input)
	}
	return nil, fmt.Errorf("no input source: set input.file or input.uri in config")
}

// LoadFile 从npz归档文件加载结果记录
// 功能：打开npz归档并转换为SimulationRecord
// 参数：path-npz文件路径
// 返回：记录与可能的错误
func LoadFile(path string) (*analysis.SimulationRecord, error) {
	log.Infof("loading results from %s", path)
	ar, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	return fromArchive(ar)
}

// resultDoc MongoDB结果集合中的文档结构
// 说明：字段键与npz归档保持一致，由仿真器写入
type resultDoc struct {
	Name      string      `bson:"name,omitempty"`
	Ego       [][]float64 `bson:"ego"`
	Human     [][]float64 `bson:"human"`
	Beta      []float64   `bson:"beta"`
	Theta     []float64   `bson:"theta"`
	TBeta     float64     `bson:"t_beta"`
	TTheta    string      `bson:"t_theta"`
	PassInter bool        `bson:"PassInter"`
	Collision bool        `bson:"Collision"`
}

// loadMongo 从MongoDB加载结果记录
// 功能：连接数据库并读取一条结果文档
// 参数：p-输入路径配置
// 返回：记录与可能的错误
// 算法说明：
// 1. 建立连接并在返回前断开
// 2. 配置了name时按name筛选，否则取第一条
// 3. 解码后走与npz相同的校验路径
func loadMongo(p config.InputPath) (*analysis.SimulationRecord, error) {
	log.Infof("loading results from %s.%s", p.DB, p.Col)
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	defer client.Disconnect(ctx)

	filter := bson.M{}
	if p.Name != "" {
		filter["name"] = p.Name
	}
	var doc resultDoc
	if err := client.Database(p.DB).Collection(p.Col).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, fmt.Errorf("load results from %s.%s: %w", p.DB, p.Col, err)
	}
	r := &analysis.SimulationRecord{
		Ego:                doc.Ego,
		Human:              doc.Human,
		BetaEstimate:       doc.Beta,
		ThetaEstimate:      doc.Theta,
		TrueBeta:           doc.TBeta,
		TrueTheta:          analysis.ParseThetaType(doc.TTheta),
		PassedIntersection: doc.PassInter,
		Collision:          doc.Collision,
	}
	if err := checkRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}
