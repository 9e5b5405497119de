package estimator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/yourusername/prop-analyzer/internal/features"
	"github.com/yourusername/prop-analyzer/internal/models"
)

// MinLogisticRows is the fewest feature rows a classifier fit accepts
const MinLogisticRows = 10

// LogisticOptions controls classifier training
type LogisticOptions struct {
	// C is the inverse L2 regularization strength
	C             float64
	TestFraction  float64
	Seed          int64
	MaxIterations int
}

// DefaultLogisticOptions returns C=1, an 80/20 split and seed 42
func DefaultLogisticOptions() LogisticOptions {
	return LogisticOptions{
		C:             1.0,
		TestFraction:  0.2,
		Seed:          42,
		MaxIterations: 200,
	}
}

// SingleClassError reports a threshold whose training labels all fall on one
// side. No classifier can be fitted, but the outcome is known: Over is true
// when every training target exceeds the threshold.
type SingleClassError struct {
	Threshold float64
	Over      bool
}

func (e *SingleClassError) Error() string {
	side := "at or under"
	if e.Over {
		side = "over"
	}
	return fmt.Sprintf("%v: every training label at threshold %v is %s", models.ErrInsufficientData, e.Threshold, side)
}

// Unwrap lets errors.Is match models.ErrInsufficientData
func (e *SingleClassError) Unwrap() error {
	return models.ErrInsufficientData
}

// singleClass returns the outcome shared by every training label, if any
func singleClass(err error) (over, ok bool) {
	var sc *SingleClassError
	if errors.As(err, &sc) {
		return sc.Over, true
	}
	return false, false
}

// LogisticModel is an L2-regularized binary classifier of stat > threshold
type LogisticModel struct {
	threshold float64
	intercept float64
	coef      []float64
	info      models.ModelInfo
}

// FitLogistic trains a classifier labelling each row by Target > threshold.
// Rows are shuffled with a fixed seed and split into train and test sets; the
// test set feeds the reported accuracy and confusion matrix.
func FitLogistic(rows []features.Row, threshold float64, opts LogisticOptions) (*LogisticModel, error) {
	if len(rows) < MinLogisticRows {
		return nil, fmt.Errorf("%w: %d feature rows, need %d", models.ErrInsufficientData, len(rows), MinLogisticRows)
	}
	if opts.C <= 0 {
		opts.C = 1.0
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 200
	}

	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		X[i] = r.Features.Slice()
		if r.Target > threshold {
			y[i] = 1
		}
	}

	trainIdx, testIdx := split(len(rows), opts.TestFraction, opts.Seed)

	positives := 0
	for _, i := range trainIdx {
		if y[i] == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(trainIdx) {
		return nil, &SingleClassError{Threshold: threshold, Over: positives > 0}
	}

	beta, err := minimizeLogLoss(X, y, trainIdx, opts)
	if err != nil {
		return nil, err
	}

	m := &LogisticModel{
		threshold: threshold,
		intercept: beta[0],
		coef:      beta[1:],
	}
	m.info = m.evaluate(X, y, trainIdx, testIdx)

	return m, nil
}

// split shuffles 0..n-1 and takes the first ceil(n*testFraction) as the test set
func split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

// minimizeLogLoss solves min 0.5*|beta[1:]|^2 + C * sum(logloss) with L-BFGS.
// The intercept beta[0] is not penalized.
func minimizeLogLoss(X [][]float64, y []float64, idx []int, opts LogisticOptions) ([]float64, error) {
	dim := len(features.Names) + 1

	problem := optimize.Problem{
		Func: func(beta []float64) float64 {
			var loss float64
			for _, i := range idx {
				z := linear(beta, X[i])
				loss += softplus(z) - y[i]*z
			}
			penalty := 0.5 * floats.Dot(beta[1:], beta[1:])
			return penalty + opts.C*loss
		},
		Grad: func(grad, beta []float64) {
			for k := range grad {
				grad[k] = 0
			}
			for _, i := range idx {
				r := sigmoid(linear(beta, X[i])) - y[i]
				grad[0] += r
				for k, x := range X[i] {
					grad[k+1] += r * x
				}
			}
			floats.Scale(opts.C, grad)
			for k := 1; k < dim; k++ {
				grad[k] += beta[k]
			}
		},
	}

	x0 := make([]float64, dim)
	settings := optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, x0, &settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("%w: logistic optimizer: %v", models.ErrNumericalFit, err)
	}
	for _, b := range result.X {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, fmt.Errorf("%w: logistic coefficients diverged", models.ErrNumericalFit)
		}
	}

	// line search failures still leave the best point found
	return result.X, nil
}

func (m *LogisticModel) evaluate(X [][]float64, y []float64, trainIdx, testIdx []int) models.ModelInfo {
	info := models.ModelInfo{
		TrainSize:         len(trainIdx),
		TestSize:          len(testIdx),
		FeatureImportance: make([]models.FeatureImportance, len(m.coef)),
	}

	correct := 0
	for _, i := range testIdx {
		predicted := 0
		if m.predict(X[i]) >= 0.5 {
			predicted = 1
		}
		actual := int(y[i])
		info.ConfusionMatrix[actual][predicted]++
		if predicted == actual {
			correct++
		}
	}
	if len(testIdx) > 0 {
		info.Accuracy = float64(correct) / float64(len(testIdx))
	}

	for k, name := range features.Names {
		info.FeatureImportance[k] = models.FeatureImportance{Feature: name, Importance: m.coef[k]}
	}

	return info
}

// Predict returns P(stat > threshold) for a feature vector
func (m *LogisticModel) Predict(v features.Vector) float64 {
	return clamp(m.predict(v.Slice()))
}

func (m *LogisticModel) predict(x []float64) float64 {
	return sigmoid(m.intercept + floats.Dot(m.coef, x))
}

// Threshold returns the line the model was trained for
func (m *LogisticModel) Threshold() float64 {
	return m.threshold
}

// Info returns the held-out quality metrics of the fit
func (m *LogisticModel) Info() models.ModelInfo {
	info := m.info
	info.FeatureImportance = append([]models.FeatureImportance(nil), m.info.FeatureImportance...)
	return info
}

// Strategy reports the classifier strategy
func (m *LogisticModel) Strategy() models.Strategy {
	return models.StrategyLogistic
}

func linear(beta, x []float64) float64 {
	return beta[0] + floats.Dot(beta[1:], x)
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1 + e^z) without overflow
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
