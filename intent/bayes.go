package intent

import (
	_ "embed"
	"encoding/csv"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/hubgoodfood/freshchat/nlp"
)

//go:embed training_data.csv
var trainingData string

// BayesClassifier is tier 2: a multinomial naive Bayes over the shared
// tokenizer's unigram/bigram stream. The model fits lazily on first use;
// sync.Once makes concurrent first callers block on a single fit instead
// of racing. A failed fit marks the tier permanently unavailable and it
// fails fast from then on.
type BayesClassifier struct {
	threshold float64
	alpha     float64

	once  sync.Once
	model *bayesModel
	err   error
}

// NewBayesClassifier builds the tier. threshold is the minimum posterior
// probability for the tier to claim an answer (default 0.3 when <= 0).
func NewBayesClassifier(threshold float64) *BayesClassifier {
	if threshold <= 0 {
		threshold = 0.3
	}
	return &BayesClassifier{threshold: threshold, alpha: 0.1}
}

// Classify predicts a label when the fitted model is confident enough.
func (c *BayesClassifier) Classify(text string) (Label, float32, bool) {
	c.once.Do(c.fit)
	if c.model == nil {
		// Tier unavailable; the cascade moves on.
		return Unknown, 0, false
	}

	tokens := nlp.Tokenize(text)
	if len(tokens) == 0 {
		return Unknown, 0, false
	}

	// With no known token the posterior reflects only class priors and
	// smoothing, not evidence. Decline so novel product names fall
	// through to catalog matching.
	known := 0
	for _, t := range tokens {
		if _, ok := c.model.vocab[t]; ok {
			known++
		}
	}
	if known == 0 {
		return Unknown, 0, false
	}

	label, posterior := c.model.predict(tokens)
	if posterior < c.threshold {
		return Unknown, 0, false
	}
	slog.Debug("statistical tier matched", "label", label, "posterior", posterior)
	return label, float32(posterior), true
}

func (c *BayesClassifier) fit() {
	model, err := fitBayes(trainingData, c.alpha)
	if err != nil {
		c.err = err
		slog.Warn("statistical intent tier unavailable", "error", err)
		return
	}
	c.model = model
	slog.Info("statistical intent model fitted",
		"labels", len(model.labels), "vocabulary", len(model.vocab))
}

type bayesModel struct {
	labels     []Label
	vocab      map[string]struct{}
	tokenCount map[Label]map[string]float64
	totalCount map[Label]float64
	logPrior   map[Label]float64
	alpha      float64
}

func fitBayes(data string, alpha float64) (*bayesModel, error) {
	reader := csv.NewReader(strings.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read training data")
	}
	if len(rows) < 2 {
		return nil, errors.New("training data is empty")
	}

	m := &bayesModel{
		vocab:      make(map[string]struct{}),
		tokenCount: make(map[Label]map[string]float64),
		totalCount: make(map[Label]float64),
		logPrior:   make(map[Label]float64),
	}
	docCount := make(map[Label]float64)
	total := 0.0

	for _, row := range rows[1:] {
		if len(row) != 2 {
			continue
		}
		label := Label(strings.TrimSpace(row[0]))
		tokens := nlp.Tokenize(row[1])
		if label == "" || len(tokens) == 0 {
			continue
		}
		if _, seen := m.tokenCount[label]; !seen {
			m.labels = append(m.labels, label)
			m.tokenCount[label] = make(map[string]float64)
		}
		docCount[label]++
		total++
		for _, t := range tokens {
			m.vocab[t] = struct{}{}
			m.tokenCount[label][t]++
			m.totalCount[label]++
		}
	}
	if total == 0 {
		return nil, errors.New("no usable training rows")
	}

	for _, label := range m.labels {
		m.logPrior[label] = math.Log(docCount[label] / total)
	}
	m.alpha = alpha
	return m, nil
}

func (m *bayesModel) predict(tokens []string) (Label, float64) {
	vocabSize := float64(len(m.vocab))
	logp := make([]float64, len(m.labels))
	for i, label := range m.labels {
		lp := m.logPrior[label]
		denom := m.totalCount[label] + m.alpha*vocabSize
		for _, t := range tokens {
			lp += math.Log((m.tokenCount[label][t] + m.alpha) / denom)
		}
		logp[i] = lp
	}

	// Softmax-normalize the log joint probabilities into posteriors.
	maxLog := logp[0]
	for _, v := range logp[1:] {
		if v > maxLog {
			maxLog = v
		}
	}
	sum := 0.0
	for i := range logp {
		logp[i] = math.Exp(logp[i] - maxLog)
		sum += logp[i]
	}

	best, bestP := m.labels[0], 0.0
	for i, label := range m.labels {
		p := logp[i] / sum
		if p > bestP {
			best, bestP = label, p
		}
	}
	return best, bestP
}
