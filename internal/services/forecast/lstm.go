package forecast

import (
	"math"
	"math/rand"

	"DrawPulse/internal/domain/models"
)

const (
	lstmHiddenSize = 8
	lstmInputBits  = 20
)

// recurrentCell is a small gated recurrent unit used as one ensemble
// member. Its weights are small random initializations and are never
// retrained; only the hidden and cell vectors evolve through forward
// recurrence, carrying state across successive predictions. It is a
// heuristic signal generator, not a trained predictor.
type recurrentCell struct {
	// gate weights: input projection, hidden projection, bias per gate
	wi, ui, bi []float64 // input gate
	wf, uf, bf []float64 // forget gate
	wo, uo, bo []float64 // output gate
	wg, ug, bg []float64 // candidate gate

	hidden []float64
	cell   []float64
	rng    *rand.Rand
}

// newRecurrentCell initializes all gate weights with small random values.
func newRecurrentCell(seed int64) *recurrentCell {
	rng := rand.New(rand.NewSource(seed))
	vec := func() []float64 {
		v := make([]float64, lstmHiddenSize)
		for i := range v {
			v[i] = (rng.Float64() - 0.5) * 0.1
		}
		return v
	}
	return &recurrentCell{
		wi: vec(), ui: vec(), bi: vec(),
		wf: vec(), uf: vec(), bf: vec(),
		wo: vec(), uo: vec(), bo: vec(),
		wg: vec(), ug: vec(), bg: vec(),
		hidden: make([]float64, lstmHiddenSize),
		cell:   make([]float64, lstmHiddenSize),
		rng:    rng,
	}
}

// step runs one gated update for a single input bit.
func (c *recurrentCell) step(x float64) {
	newHidden := make([]float64, lstmHiddenSize)
	newCell := make([]float64, lstmHiddenSize)
	for j := 0; j < lstmHiddenSize; j++ {
		h := c.hidden[j]
		i := sigmoid(c.wi[j]*x + c.ui[j]*h + c.bi[j])
		f := sigmoid(c.wf[j]*x + c.uf[j]*h + c.bf[j])
		o := sigmoid(c.wo[j]*x + c.uo[j]*h + c.bo[j])
		g := math.Tanh(c.wg[j]*x + c.ug[j]*h + c.bg[j])
		newCell[j] = f*c.cell[j] + i*g
		newHidden[j] = o * math.Tanh(newCell[j])
	}
	c.hidden = newHidden
	c.cell = newCell
}

// forward feeds the bit sequence through the cell and returns the output
// probability: sigmoid of the mean hidden activation.
func (c *recurrentCell) forward(bits []int) float64 {
	for _, b := range bits {
		c.step(float64(b))
	}
	sum := 0.0
	for _, h := range c.hidden {
		sum += h
	}
	return sigmoid(sum / float64(lstmHiddenSize))
}

// predictLSTM runs the most recent 20 bits through the cell. Below 20 bits
// it returns the documented neutral fallback. The cell is created lazily on
// first use and never reset.
func predictLSTM(buf *Buffer, cell **recurrentCell, seed int64) models.ModelPrediction {
	if buf.Len() < lstmInputBits {
		return models.ModelPrediction{
			Model:      ModelLSTM,
			Label:      models.LabelBig,
			Confidence: 0.50,
			Source:     "lstm_insufficient",
		}
	}
	if *cell == nil {
		*cell = newRecurrentCell(seed)
	}

	out := (*cell).forward(buf.RecentBits(lstmInputBits))
	label := models.LabelSmall
	if out >= 0.5 {
		label = models.LabelBig
	}
	return models.ModelPrediction{
		Model:      ModelLSTM,
		Label:      label,
		Confidence: math.Min(math.Abs(out-0.5)*2+0.10, 0.80),
		Source:     "lstm",
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
