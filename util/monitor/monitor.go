package monitor

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/bankdapp/common"
	"github.com/tranvictor/bankdapp/util/logger"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultLostAfter = 3 * time.Minute
)

// TxReader is the part of reader.EthReader the monitor polls.
type TxReader interface {
	TxInfoFromHash(ctx context.Context, tx string) (common.TxInfo, error)
	HeaderByNumber(ctx context.Context, number int64) (*types.Header, error)
}

type TxMonitor struct {
	reader    TxReader
	interval  time.Duration
	lostAfter time.Duration
}

func NewGenericTxMonitor(r TxReader) *TxMonitor {
	return &TxMonitor{
		reader:    r,
		interval:  DefaultInterval,
		lostAfter: DefaultLostAfter,
	}
}

// WithInterval sets how often the tx status is polled.
func (m *TxMonitor) WithInterval(interval time.Duration) *TxMonitor {
	m.interval = interval
	return m
}

// WithLostAfter sets how long a tx may stay unknown to every node before
// it is reported as lost.
func (m *TxMonitor) WithLostAfter(d time.Duration) *TxMonitor {
	m.lostAfter = d
	return m
}

func (m *TxMonitor) periodicCheck(ctx context.Context, tx string, info chan<- common.TxInfo) {
	defer close(info)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	startTime := time.Now()
	isOnNode := false
	for {
		var t time.Time
		select {
		case <-ctx.Done():
			return
		case t = <-ticker.C:
		}
		txinfo, err := m.reader.TxInfoFromHash(ctx, tx)
		switch txinfo.Status {
		case common.TxStatusError:
			logger.L().Debugw("checking tx failed", "tx", tx, "err", err)
			continue
		case common.TxStatusNotFound:
			if t.Sub(startTime) > m.lostAfter && !isOnNode {
				info <- common.TxInfo{Status: common.TxStatusLost}
				return
			}
			continue
		case common.TxStatusPending:
			isOnNode = true
			continue
		case common.TxStatusReverted, common.TxStatusDone:
			block, _ := m.reader.HeaderByNumber(ctx, txinfo.Receipt.BlockNumber.Int64())
			txinfo.BlockHeader = block
			info <- txinfo
			return
		}
	}
}

// MakeWaitChannel polls tx in the background. The channel yields the final
// TxInfo once, or is closed without a value when ctx is cancelled.
func (m *TxMonitor) MakeWaitChannel(ctx context.Context, tx string) <-chan common.TxInfo {
	result := make(chan common.TxInfo, 1)
	go m.periodicCheck(ctx, tx, result)
	return result
}

// BlockingWait waits until tx is mined or lost. Cancelling ctx stops the
// wait, the tx itself stays wherever it is.
func (m *TxMonitor) BlockingWait(ctx context.Context, tx string) (common.TxInfo, error) {
	info, ok := <-m.MakeWaitChannel(ctx, tx)
	if !ok {
		return common.TxInfo{Status: common.TxStatusPending}, ctx.Err()
	}
	return info, nil
}
