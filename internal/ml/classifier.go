package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

var (
	// ErrInvalidFeatures 特征向量含 NaN/Inf 或非法取值
	ErrInvalidFeatures = errors.New("invalid feature vector")
	// ErrEmptyTrainingSet 训练集为空
	ErrEmptyTrainingSet = errors.New("empty training set")
)

// Features 推荐模型的输入特征
type Features struct {
	VerbalAccuracy     float64 `json:"verbalAccuracy"`
	SelectionAccuracy  float64 `json:"selectionAccuracy"`
	CategoryDifficulty float64 `json:"categoryDifficulty"` // 1=easy 2=medium 3=hard 的均值
	TimeSpentMinutes   float64 `json:"timeSpentMinutes"`
	SuccessRate        float64 `json:"successRate"`
	PreviousAttempts   float64 `json:"previousAttempts"`
}

func (f Features) vector() []float64 {
	return []float64{
		f.VerbalAccuracy,
		f.SelectionAccuracy,
		f.CategoryDifficulty,
		f.TimeSpentMinutes,
		f.SuccessRate,
		f.PreviousAttempts,
	}
}

// Validate 拒绝畸形特征，调用方应降级为规则推荐
func (f Features) Validate() error {
	for _, v := range f.vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidFeatures
		}
	}
	if f.PreviousAttempts < 0 || f.TimeSpentMinutes < 0 {
		return ErrInvalidFeatures
	}
	return nil
}

// Classifier 由组合根注入推荐服务，预测失败由调用方降级处理
type Classifier interface {
	Predict(ctx context.Context, features Features) (string, error)
}

// Example 一条历史训练样本：特征 → 推荐难度档位
type Example struct {
	Features
	Label string `json:"label"`
}

// NearestCentroidClassifier 按标签求特征质心，预测取欧氏距离最近的质心。
// 训练后只读，可并发使用。
type NearestCentroidClassifier struct {
	labels    []string
	centroids [][]float64
	scale     []float64
}

// Train 从历史样本构建分类器。各特征按训练集内的取值范围归一，
// 避免 previous_attempts 这类大尺度特征淹没准确率特征。
func Train(examples []Example) (*NearestCentroidClassifier, error) {
	if len(examples) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	dim := len(examples[0].vector())
	sums := make(map[string][]float64)
	counts := make(map[string]int)
	minV := make([]float64, dim)
	maxV := make([]float64, dim)
	for i := range minV {
		minV[i] = math.Inf(1)
		maxV[i] = math.Inf(-1)
	}

	for _, ex := range examples {
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("training example %q: %w", ex.Label, err)
		}
		vec := ex.vector()
		if _, ok := sums[ex.Label]; !ok {
			sums[ex.Label] = make([]float64, dim)
		}
		for i, v := range vec {
			sums[ex.Label][i] += v
			if v < minV[i] {
				minV[i] = v
			}
			if v > maxV[i] {
				maxV[i] = v
			}
		}
		counts[ex.Label]++
	}

	scale := make([]float64, dim)
	for i := range scale {
		scale[i] = maxV[i] - minV[i]
		if scale[i] == 0 {
			scale[i] = 1
		}
	}

	c := &NearestCentroidClassifier{scale: scale}
	for label, sum := range sums {
		centroid := make([]float64, dim)
		for i, v := range sum {
			centroid[i] = v / float64(counts[label])
		}
		c.labels = append(c.labels, label)
		c.centroids = append(c.centroids, centroid)
	}
	return c, nil
}

// LoadModel 从 JSON 样本文件训练分类器
func LoadModel(path string) (*NearestCentroidClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	return Train(examples)
}

func (c *NearestCentroidClassifier) Predict(ctx context.Context, features Features) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := features.Validate(); err != nil {
		return "", err
	}

	vec := features.vector()
	best := -1
	bestDist := math.Inf(1)
	for i, centroid := range c.centroids {
		var dist float64
		for j, v := range vec {
			d := (v - centroid[j]) / c.scale[j]
			dist += d * d
		}
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if best < 0 {
		return "", ErrEmptyTrainingSet
	}
	return c.labels[best], nil
}
