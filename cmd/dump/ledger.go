package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/vouchernet/voucher-contract/rpc/voucher"
)

// number of iterator items requested from the RPC server at once.
const traverseBatch = 100

func _dump(neoBlockchainRPCEndpoint string, contractHash util.Uint160) error {
	c, err := rpcclient.New(context.Background(), neoBlockchainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("RPC client dial: %w", err)
	}

	defer c.Close()

	inv := invoker.New(c, nil)
	reader := voucher.NewReader(inv, contractHash)

	denominations, err := reader.Denominations()
	if err != nil {
		return fmt.Errorf("read denomination catalog: %w", err)
	}

	fmt.Println("catalog:")
	for _, id := range denominations {
		rate, err := reader.Rate(id)
		if err != nil {
			return fmt.Errorf("read rate of denomination %s: %w", id, err)
		}

		supply, err := reader.TotalSupply(id)
		if err != nil {
			return fmt.Errorf("read supply of denomination %s: %w", id, err)
		}

		uri, err := reader.Uri(id)
		if err != nil {
			return fmt.Errorf("read URI of denomination %s: %w", id, err)
		}

		fmt.Printf("  %s\trate=%s\tsupply=%s\t%s\n", id, rate, supply, uri)
	}

	fmt.Println("balances:")
	err = traverse(inv, reader.IterateBalances, func(key []byte, value stackitem.Item) error {
		if len(key) < util.Uint160Size {
			return fmt.Errorf("unexpected balance key length %d", len(key))
		}

		holder, err := util.Uint160DecodeBytesBE(key[:util.Uint160Size])
		if err != nil {
			return fmt.Errorf("decode holder script hash: %w", err)
		}

		amount, err := value.TryInteger()
		if err != nil {
			return fmt.Errorf("decode balance value: %w", err)
		}

		fmt.Printf("  %s\t%s\t%s\n", address.Uint160ToString(holder), bigint.FromBytes(key[util.Uint160Size:]), amount)
		return nil
	})
	if err != nil {
		return fmt.Errorf("iterate balances: %w", err)
	}

	fmt.Println("URI overrides:")
	err = traverse(inv, reader.IterateOverrides, func(key []byte, value stackitem.Item) error {
		suffix, err := value.TryBytes()
		if err != nil {
			return fmt.Errorf("decode override value: %w", err)
		}

		fmt.Printf("  %s\t%q\n", bigint.FromBytes(key), string(suffix))
		return nil
	})
	if err != nil {
		return fmt.Errorf("iterate URI overrides: %w", err)
	}

	return nil
}

// traverse walks a key-value storage iterator opened by open and calls f
// for every pair.
func traverse(inv *invoker.Invoker, open func() (uuid.UUID, result.Iterator, error), f func(key []byte, value stackitem.Item) error) error {
	sessionID, iter, err := open()
	if err != nil {
		return fmt.Errorf("open iterator session: %w", err)
	}

	defer func() {
		_ = inv.TerminateSession(sessionID)
	}()

	for {
		items, err := inv.TraverseIterator(sessionID, &iter, traverseBatch)
		if err != nil {
			return fmt.Errorf("traverse iterator session: %w", err)
		}

		if len(items) == 0 {
			return nil
		}

		for _, item := range items {
			kv, ok := item.Value().([]stackitem.Item)
			if !ok || len(kv) != 2 {
				return fmt.Errorf("unexpected iterator item %s", item.Type())
			}

			key, err := kv[0].TryBytes()
			if err != nil {
				return fmt.Errorf("decode iterator key: %w", err)
			}

			err = f(key, kv[1])
			if err != nil {
				return err
			}
		}
	}
}
