package api

import (
	"errors"
	"strings"

	"palletpack/internal/model"
)

// validateSolveRequest checks the request shape and returns the parsed
// algorithm. Exactly one of datasetId and instance must be given.
func validateSolveRequest(req *model.SolveRequest) (model.Algorithm, error) {
	req.DatasetID = strings.TrimSpace(req.DatasetID)
	if req.DatasetID == "" && req.Instance == nil {
		return 0, errors.New("one of datasetId or instance is required")
	}
	if req.DatasetID != "" && req.Instance != nil {
		return 0, errors.New("datasetId and instance are mutually exclusive")
	}
	if strings.TrimSpace(req.Algorithm) == "" {
		return 0, errors.New("algorithm is required")
	}
	alg, err := model.ParseAlgorithm(req.Algorithm)
	if err != nil {
		return 0, err
	}
	if req.Instance != nil {
		if err := req.Instance.Validate(); err != nil {
			return 0, err
		}
	}
	return alg, nil
}

func validateDataset(ds *model.Dataset) error {
	ds.Name = strings.TrimSpace(ds.Name)
	if len(ds.Name) > 200 {
		return errors.New("name must be at most 200 characters")
	}
	return ds.Instance(0).Validate()
}
