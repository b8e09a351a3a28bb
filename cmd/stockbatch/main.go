// Package main - stockbatch CLI
// 시세 수집, 전략 스크리닝, CSV 내보내기 배치 진입점
//
// 사용법:
//
//	go run ./cmd/stockbatch ingest prices KR_STOCK
//	go run ./cmd/stockbatch screen --all
//	go run ./cmd/stockbatch export daily
package main

import (
	"os"

	"github.com/gmdcjdakdcjd/stockbatch/cmd/stockbatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
