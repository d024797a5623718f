package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelRequiredFeatureNames(t *testing.T) {
	model := Model{
		Name: "churn",
		InferenceView: InferenceView{
			Entities: []Feature{{Name: "user_id", DType: TypeInt64}},
			Features: []Feature{
				{Name: "total", DType: TypeFloat},
				{Name: "age", DType: TypeInt32},
			},
		},
	}
	assert.Equal(t, []string{"user_id", "total", "age"}, model.RequiredFeatureNames())
}
