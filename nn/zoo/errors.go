package zoo

import "github.com/pkg/errors"

var (
	// ErrUnknownModel is returned when no constructor is registered under
	// the requested name.
	ErrUnknownModel = errors.New("unknown model")

	// ErrUnsupportedDataset is returned by constructors whose head depends
	// on the dataset's image size. The message is shared by alexnet and
	// vgg16.
	ErrUnsupportedDataset = errors.New("VGG16 can't be built for this dataset, maybe modify it?")

	// ErrInvalidOutFeatures is returned for a non-positive class count.
	ErrInvalidOutFeatures = errors.New("out features must be positive")
)
