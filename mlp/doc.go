// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mlp provides a fully connected feed-forward network with sigmoid
// activations trained by per-example gradient descent.
//
// # Overview
//
// This package contains:
//   - Topology: the layer widths of a network
//   - Network: weights plus activation storage, Forward and Backpropagate
//   - Trainer: the epoch loop with RUNNING, CONVERGED and EXHAUSTED states
//   - SaveWeights / LoadWeights: text and .born weight files
//
// # Basic Usage
//
//	import "github.com/born-ml/perceptron/mlp"
//
//	func main() {
//	    topo, err := mlp.NewTopology(2, []int{2}, 1)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    net := mlp.NewNetwork(topo)
//	    if err := net.RandomizeWeights(-1.5, 1.5, nil); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    trainer, err := mlp.NewTrainer(net, mlp.TrainConfig{
//	        Lambda:         0.5,
//	        MaxIterations:  5000,
//	        ErrorThreshold: 0.01,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := trainer.Train(context.Background(), []mlp.Example{
//	        {Input: []float64{0, 0}, Target: []float64{0}},
//	        {Input: []float64{0, 1}, Target: []float64{0}},
//	        {Input: []float64{1, 0}, Target: []float64{0}},
//	        {Input: []float64{1, 1}, Target: []float64{1}},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.State, result.Epochs, result.Error)
//
//	    if err := mlp.SaveWeights("and.born", net.Weights()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Weight Layout
//
// Weights are addressed as (n, k, j): the connection from node k of layer n
// to node j of layer n+1. Flat slices and text files list them in that
// order, layer by layer.
//
// # Concurrency
//
// A Network and its Trainer belong to one goroutine. Forward returns a view
// into the network's activation storage that the next call overwrites; use
// Predict for a copy.
package mlp
