package resource

// Class is the capacity accounting class of a resource key.
type Class string

const (
	// ClassNone keys never count toward any capacity (currency).
	ClassNone Class = "none"
	// ClassGlobal keys count toward the global capacity.
	ClassGlobal Class = "global"
	// ClassCrop keys count toward the global capacity and the crop sub-capacity.
	ClassCrop Class = "crop"
)

// Classifier maps keys to their capacity class. Resources introduced by
// modules fall into the global class without any registration.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the capacity class of k.
func (c *Classifier) Classify(k Key) Class {
	if k == Gold {
		return ClassNone
	}
	if k == Veggies {
		return ClassCrop
	}
	if _, ok := k.CropID(); ok {
		return ClassCrop
	}
	return ClassGlobal
}

// Tracked reports whether k counts toward the global capacity.
func (c *Classifier) Tracked(k Key) bool {
	return c.Classify(k) != ClassNone
}
