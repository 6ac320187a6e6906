package resource

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestClassifier_Classify(t *testing.T) {
	tests := map[string]struct {
		key      Key
		expClass Class
	}{
		"gold is untracked":      {key: Gold, expClass: ClassNone},
		"veggies are crops":      {key: Veggies, expClass: ClassCrop},
		"harvested crop":         {key: CropKey("carrot"), expClass: ClassCrop},
		"wood is global":         {key: Wood, expClass: ClassGlobal},
		"module resource global": {key: Key("honey"), expClass: ClassGlobal},
	}

	c := NewClassifier()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "class", c.Classify(tt.key), tt.expClass)
		})
	}
}
