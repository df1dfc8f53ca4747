package testutil

import (
	"fmt"

	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/oracle"
)

// OracleReturning predicts one file per kind for every unit, so any
// artifact with that many files validates.
func OracleReturning(kinds ...model.OutputKind) oracle.Func {
	return func(model.Unit, model.Platform) ([]oracle.Prediction, error) {
		preds := make([]oracle.Prediction, len(kinds))
		for i, k := range kinds {
			preds[i] = oracle.Prediction{Filename: fmt.Sprintf("out%d", i), Kind: model.KindPtr(k)}
		}
		return preds, nil
	}
}
