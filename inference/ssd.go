package inference

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/depthcam/common"
)

// SSDRecordSize is the number of values per detection in a DetectionOutput blob:
// image_id, label, confidence, x_min, y_min, x_max, y_max.
const SSDRecordSize = 7

// DecodeSSD decodes a flattened [1, 1, N, 7] DetectionOutput blob.
//
// Decoding stops at the first record whose image_id is negative, which the layer uses to
// terminate the list. No confidence filtering is done here.
//
// Arguments:
// - data: The flattened output blob.
//
// Returns:
// - The decoded detections in output order.
// - error if the blob length is not a multiple of SSDRecordSize.
func DecodeSSD(data []float32) ([]common.Detection, error) {
	if len(data)%SSDRecordSize != 0 {
		return nil, errors.Errorf("detection output has %d values, not a multiple of %d",
			len(data), SSDRecordSize)
	}

	detections := make([]common.Detection, 0, len(data)/SSDRecordSize)
	for i := 0; i+SSDRecordSize <= len(data); i += SSDRecordSize {
		rec := data[i : i+SSDRecordSize]
		if rec[0] < 0 {
			break
		}
		detections = append(detections, common.Detection{
			ClassID:    int(rec[1]),
			Confidence: rec[2],
			Box: common.Box{
				XMin: rec[3],
				YMin: rec[4],
				XMax: rec[5],
				YMax: rec[6],
			},
		})
	}

	return detections, nil
}
