//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package diskio

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaviate/blobopt/usecases/monitoring"
)

func CreateFile(path, source string) (*os.File, error) {
	countOp("create_file", source)
	return os.Create(path)
}

func OpenFile(path, source string) (*os.File, error) {
	countOp("open_file", source)
	return os.Open(path)
}

func RemoveFile(path, source string) error {
	countOp("remove_file", source)
	return os.Remove(path)
}

func countOp(operation, source string) {
	monitoring.GetMetrics().FileIOOps.With(prometheus.Labels{
		"operation": operation,
		"source":    source,
	}).Inc()
}
