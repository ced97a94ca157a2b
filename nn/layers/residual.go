package layers

import (
	"fmt"

	"ariann_lib/nn"
	"ariann_lib/tensor"
)

// BasicBlock is the two-convolution residual block of ResNet18/34:
//
//	out = relu(bn2(conv2(relu(bn1(conv1(x))))) + shortcut(x))
//
// where shortcut is the identity, or Downsample when the block changes
// stride or width.
type BasicBlock struct {
	Conv1      *Conv2D
	BN1        *BatchNorm2D
	ReLU1      *Activation
	Conv2      *Conv2D
	BN2        *BatchNorm2D
	Downsample *nn.Sequential // nil for an identity shortcut
	ReLUOut    *Activation

	main *nn.Sequential
}

// NewBasicBlock builds a block mapping inChan→outChan with the given stride.
// A 1×1 projection shortcut is added whenever the shape changes.
func NewBasicBlock(inChan, outChan, stride int) *BasicBlock {
	b := &BasicBlock{
		Conv1:   NewConv2D(inChan, outChan, 3, 3).WithStride(stride).WithPadding(1).WithoutBias(),
		BN1:     NewBatchNorm2D(outChan),
		ReLU1:   NewReLU(),
		Conv2:   NewConv2D(outChan, outChan, 3, 3).WithPadding(1).WithoutBias(),
		BN2:     NewBatchNorm2D(outChan),
		ReLUOut: NewReLU(),
	}
	if stride != 1 || inChan != outChan {
		b.Downsample = nn.NewSequential(
			NewConv2D(inChan, outChan, 1, 1).WithStride(stride).WithoutBias(),
			NewBatchNorm2D(outChan),
		)
	}
	b.main = nn.NewSequential(b.Conv1, b.BN1, b.ReLU1, b.Conv2, b.BN2)
	return b
}

// Children uses torchvision's attribute names so weight paths line up.
func (b *BasicBlock) Children() []nn.Child {
	out := []nn.Child{
		{Name: "conv1", Module: b.Conv1},
		{Name: "bn1", Module: b.BN1},
		{Name: "relu", Module: b.ReLU1},
		{Name: "conv2", Module: b.Conv2},
		{Name: "bn2", Module: b.BN2},
	}
	if b.Downsample != nil {
		out = append(out, nn.Child{Name: "downsample", Module: b.Downsample})
	}
	return append(out, nn.Child{Name: "relu_out", Module: b.ReLUOut})
}

func (b *BasicBlock) OutputShape(in []int) ([]int, error) {
	mainShape, err := b.main.OutputShape(in)
	if err != nil {
		return nil, err
	}
	skip := in
	if b.Downsample != nil {
		if skip, err = b.Downsample.OutputShape(in); err != nil {
			return nil, err
		}
	}
	if !tensor.SameShape(mainShape, skip) {
		return nil, fmt.Errorf("%s: main path %v and shortcut %v disagree", b.Tag(), mainShape, skip)
	}
	return mainShape, nil
}

func (b *BasicBlock) Forward(x interface{}) (interface{}, error) {
	in, err := asTensor(x)
	if err != nil {
		return nil, err
	}
	mainOut, err := b.main.Forward(in)
	if err != nil {
		return nil, err
	}
	var skip interface{} = in
	if b.Downsample != nil {
		if skip, err = b.Downsample.Forward(in); err != nil {
			return nil, err
		}
	}
	sum, err := tensor.Add(mainOut.(*tensor.Tensor), skip.(*tensor.Tensor))
	if err != nil {
		return nil, err
	}
	return b.ReLUOut.Forward(sum)
}

// Backward returns the gradient accumulated from both paths.
func (b *BasicBlock) Backward(g interface{}) (interface{}, error) {
	grad, err := b.ReLUOut.Backward(g)
	if err != nil {
		return nil, err
	}
	gMain, err := b.main.Backward(grad)
	if err != nil {
		return nil, err
	}
	gSkip := grad
	if b.Downsample != nil {
		if gSkip, err = b.Downsample.Backward(grad); err != nil {
			return nil, err
		}
	}
	return tensor.Add(gMain.(*tensor.Tensor), gSkip.(*tensor.Tensor))
}

func (b *BasicBlock) Update(lr float64) error {
	if err := b.main.Update(lr); err != nil {
		return err
	}
	if b.Downsample != nil {
		return b.Downsample.Update(lr)
	}
	return nil
}

func (b *BasicBlock) Encrypted() bool {
	return b.ReLU1.Encrypted() || b.ReLUOut.Encrypted()
}

func (b *BasicBlock) Levels() int {
	return b.main.Levels() + b.ReLUOut.Levels()
}

func (b *BasicBlock) Tag() string {
	return fmt.Sprintf("BasicBlock_%dx%d_s%d", b.Conv1.InChan, b.Conv1.OutChan, b.Conv1.Stride)
}
