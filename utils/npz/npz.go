// NumPy归档解码器，支持读取仿真器输出的.npz结果文件
package npz

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// npy文件魔数，后接主次版本号
var npyMagic = []byte("\x93NUMPY")

// Array 从npy成员解码得到的数组
// 功能：以宽化后的Go类型保存numpy数组数据
// 说明：数值类型（f/i/u）统一宽化为float64，布尔为bool，
// 定长字符串（U/S）解码为string，按dtype种类只填充其中一个切片
type Array struct {
	Shape   []int     // 数组形状，标量(0维)时为空
	Floats  []float64 // 数值数据（C序展开）
	Bools   []bool    // 布尔数据
	Strings []string  // 字符串数据
}

// Len 元素总数
func (a *Array) Len() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	return n
}

// Float 取标量浮点值
// 功能：将0维或单元素数组取为一个float64
// 返回：标量值与可能的错误
func (a *Array) Float() (float64, error) {
	if len(a.Floats) == 1 {
		return a.Floats[0], nil
	}
	if len(a.Bools) == 1 {
		if a.Bools[0] {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("not a numeric scalar (shape %v)", a.Shape)
}

// FloatSlice 取一维浮点序列
func (a *Array) FloatSlice() ([]float64, error) {
	if len(a.Shape) > 1 {
		return nil, fmt.Errorf("expect 1-d array, got shape %v", a.Shape)
	}
	if a.Floats == nil {
		return nil, fmt.Errorf("not a numeric array")
	}
	return a.Floats, nil
}

// Matrix 取二维浮点矩阵（按行展开）
// 功能：将2维数值数组转换为[][]float64
// 返回：行切片与可能的错误
func (a *Array) Matrix() ([][]float64, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("expect 2-d array, got shape %v", a.Shape)
	}
	if a.Floats == nil {
		return nil, fmt.Errorf("not a numeric array")
	}
	rows, cols := a.Shape[0], a.Shape[1]
	m := make([][]float64, rows)
	for i := range m {
		m[i] = a.Floats[i*cols : (i+1)*cols]
	}
	return m, nil
}

// Bool 取标量布尔值
// 说明：兼容以数值0/1存储的布尔标志
func (a *Array) Bool() (bool, error) {
	if len(a.Bools) == 1 {
		return a.Bools[0], nil
	}
	if len(a.Floats) == 1 {
		return a.Floats[0] != 0, nil
	}
	return false, fmt.Errorf("not a boolean scalar (shape %v)", a.Shape)
}

// String 取标量字符串值
func (a *Array) String() (string, error) {
	if len(a.Strings) == 1 {
		return a.Strings[0], nil
	}
	return "", fmt.Errorf("not a string scalar (shape %v)", a.Shape)
}

// Archive npz归档，键为去掉.npy后缀的成员名
type Archive map[string]*Array

// Get 按键取数组，键缺失时返回描述性错误
func (ar Archive) Get(key string) (*Array, error) {
	a, ok := ar[key]
	if !ok {
		return nil, fmt.Errorf("archive missing required field %q", key)
	}
	return a, nil
}

// Open 打开并解码npz归档
// 功能：读取zip容器中的全部npy成员并解码为Archive
// 参数：path-npz文件路径
// 返回：解码后的归档与可能的错误
// 算法说明：
// 1. 以zip格式打开文件
// 2. 逐成员读取字节并按npy格式解码
// 3. 去掉成员名的.npy后缀作为键
func Open(path string) (Archive, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open npz %s: %w", path, err)
	}
	defer r.Close()

	ar := make(Archive, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open npz member %s: %w", f.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read npz member %s: %w", f.Name, err)
		}
		a, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode npz member %s: %w", f.Name, err)
		}
		ar[strings.TrimSuffix(f.Name, ".npy")] = a
	}
	return ar, nil
}

// npy header中的dtype与布局描述
type header struct {
	descr   string
	fortran bool
	shape   []int
}

// Decode 解码单个npy成员
// 功能：解析npy头部并按dtype读出数据
// 参数：raw-npy成员完整字节
// 返回：解码后的数组与可能的错误
// 算法说明：
// 1. 校验魔数与版本，读取头部长度（v1为uint16，v2/v3为uint32）
// 2. 解析头部python字典字面量，取出descr/fortran_order/shape
// 3. 按dtype种类解码数据区：f/i/u宽化为float64，b为bool，U/S为string
// 4. fortran序的二维数组转置为C序
func Decode(raw []byte) (*Array, error) {
	if len(raw) < 10 || !bytes.Equal(raw[:6], npyMagic) {
		return nil, fmt.Errorf("bad npy magic")
	}
	major := raw[6]
	var headerLen, dataOff int
	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(raw[8:10]))
		dataOff = 10 + headerLen
	case 2, 3:
		if len(raw) < 12 {
			return nil, fmt.Errorf("truncated npy header")
		}
		headerLen = int(binary.LittleEndian.Uint32(raw[8:12]))
		dataOff = 12 + headerLen
	default:
		return nil, fmt.Errorf("unsupported npy version %d", major)
	}
	if len(raw) < dataOff {
		return nil, fmt.Errorf("truncated npy header")
	}
	h, err := parseHeader(string(raw[dataOff-headerLen : dataOff]))
	if err != nil {
		return nil, err
	}
	a, err := decodeData(h, raw[dataOff:])
	if err != nil {
		return nil, err
	}
	if h.fortran && len(h.shape) == 2 {
		transpose(a)
	}
	return a, nil
}

// parseHeader 解析npy头部字典
// 说明：头部形如 {'descr': '<f8', 'fortran_order': False, 'shape': (3, 4), }
func parseHeader(s string) (header, error) {
	h := header{}
	descr, err := extractQuoted(s, "'descr':")
	if err != nil {
		return h, err
	}
	h.descr = descr
	h.fortran = strings.Contains(afterKey(s, "'fortran_order':"), "True")
	shapeStr := afterKey(s, "'shape':")
	open := strings.Index(shapeStr, "(")
	closing := strings.Index(shapeStr, ")")
	if open < 0 || closing < open {
		return h, fmt.Errorf("bad npy shape in header %q", s)
	}
	for _, tok := range strings.Split(shapeStr[open+1:closing], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return h, fmt.Errorf("bad npy shape token %q: %w", tok, err)
		}
		h.shape = append(h.shape, n)
	}
	return h, nil
}

func afterKey(s, key string) string {
	i := strings.Index(s, key)
	if i < 0 {
		return ""
	}
	return s[i+len(key):]
}

func extractQuoted(s, key string) (string, error) {
	rest := afterKey(s, key)
	first := strings.Index(rest, "'")
	if first < 0 {
		return "", fmt.Errorf("missing %s in npy header", key)
	}
	second := strings.Index(rest[first+1:], "'")
	if second < 0 {
		return "", fmt.Errorf("missing %s in npy header", key)
	}
	return rest[first+1 : first+1+second], nil
}

// decodeData 按dtype解码数据区
func decodeData(h header, data []byte) (*Array, error) {
	if len(h.descr) < 2 {
		return nil, fmt.Errorf("bad npy dtype %q", h.descr)
	}
	order := h.descr[0] // '<' '>' '|' '='
	kind := h.descr[1]
	var bo binary.ByteOrder = binary.LittleEndian
	if order == '>' {
		bo = binary.BigEndian
	}
	itemCount := 1
	for _, s := range h.shape {
		itemCount *= s
	}
	a := &Array{Shape: h.shape}

	size := 0
	if len(h.descr) > 2 {
		var err error
		if size, err = strconv.Atoi(h.descr[2:]); err != nil {
			return nil, fmt.Errorf("bad npy dtype %q", h.descr)
		}
	}

	switch kind {
	case 'f', 'i', 'u':
		need := itemCount * size
		if len(data) < need {
			return nil, fmt.Errorf("npy data too short: need %d bytes, have %d", need, len(data))
		}
		a.Floats = make([]float64, itemCount)
		for i := 0; i < itemCount; i++ {
			chunk := data[i*size : (i+1)*size]
			v, err := readNumber(kind, size, bo, chunk)
			if err != nil {
				return nil, err
			}
			a.Floats[i] = v
		}
	case 'b':
		if len(data) < itemCount {
			return nil, fmt.Errorf("npy data too short: need %d bytes, have %d", itemCount, len(data))
		}
		a.Bools = make([]bool, itemCount)
		for i := 0; i < itemCount; i++ {
			a.Bools[i] = data[i] != 0
		}
	case 'U':
		need := itemCount * size * 4
		if len(data) < need {
			return nil, fmt.Errorf("npy data too short: need %d bytes, have %d", need, len(data))
		}
		a.Strings = make([]string, itemCount)
		for i := 0; i < itemCount; i++ {
			a.Strings[i] = decodeUTF32(data[i*size*4:(i+1)*size*4], bo)
		}
	case 'S':
		need := itemCount * size
		if len(data) < need {
			return nil, fmt.Errorf("npy data too short: need %d bytes, have %d", need, len(data))
		}
		a.Strings = make([]string, itemCount)
		for i := 0; i < itemCount; i++ {
			a.Strings[i] = strings.TrimRight(string(data[i*size:(i+1)*size]), "\x00")
		}
	case 'O':
		return nil, fmt.Errorf("npy object arrays (pickled) are not supported")
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", h.descr)
	}
	return a, nil
}

// readNumber 读取单个数值并宽化为float64
func readNumber(kind byte, size int, bo binary.ByteOrder, b []byte) (float64, error) {
	switch kind {
	case 'f':
		switch size {
		case 8:
			return math.Float64frombits(bo.Uint64(b)), nil
		case 4:
			return float64(math.Float32frombits(bo.Uint32(b))), nil
		}
	case 'i':
		switch size {
		case 8:
			return float64(int64(bo.Uint64(b))), nil
		case 4:
			return float64(int32(bo.Uint32(b))), nil
		case 2:
			return float64(int16(bo.Uint16(b))), nil
		case 1:
			return float64(int8(b[0])), nil
		}
	case 'u':
		switch size {
		case 8:
			return float64(bo.Uint64(b)), nil
		case 4:
			return float64(bo.Uint32(b)), nil
		case 2:
			return float64(bo.Uint16(b)), nil
		case 1:
			return float64(b[0]), nil
		}
	}
	return 0, fmt.Errorf("unsupported numeric dtype kind %c size %d", kind, size)
}

// decodeUTF32 解码numpy定长UTF-32字符串，去除填充的NUL
func decodeUTF32(b []byte, bo binary.ByteOrder) string {
	var sb strings.Builder
	for i := 0; i+4 <= len(b); i += 4 {
		r := rune(bo.Uint32(b[i : i+4]))
		if r == 0 {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// transpose 将fortran序二维数据转为C序
func transpose(a *Array) {
	rows, cols := a.Shape[0], a.Shape[1]
	if a.Floats != nil {
		out := make([]float64, len(a.Floats))
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out[i*cols+j] = a.Floats[j*rows+i]
			}
		}
		a.Floats = out
	}
}
