package main

import (
	"context"
	"fmt"
	"os"

	"fjacquet/txn-classifier/cmd/detect"
	"fjacquet/txn-classifier/cmd/model"
	"fjacquet/txn-classifier/cmd/predict"
	"fjacquet/txn-classifier/cmd/root"
	"fjacquet/txn-classifier/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(predict.Cmd)
	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(model.Cmd)
}

func main() {
	if err := root.Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
