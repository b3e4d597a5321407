// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package txbuilder

import (
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/credmint/metadata"
	"github.com/blinklabs-io/credmint/wallet"
)

// BuildBatchMint assembles a single transaction minting one token per
// eligible request. Requests that cannot be included, because the
// certificate was already minted, the request is malformed, or its
// document alone exceeds the metadata limit, are returned as rejected
// with their reason; the remaining requests keep their submitted
// order. The whole batch fails only when it exceeds
// the size limit, when its merged metadata exceeds the document
// limit, or when no request is eligible.
func (b *Builder) BuildBatchMint(
	ctx context.Context,
	w wallet.Wallet,
	requests []MintRequest,
	currentSlot uint64,
) (*BatchResult, error) {
	if len(requests) == 0 {
		return nil, errors.New("empty batch")
	}
	if len(requests) > b.config.MaxBatchSize {
		return nil, fmt.Errorf(
			"%w: %d requests, limit is %d",
			ErrBatchTooLarge,
			len(requests),
			b.config.MaxBatchSize,
		)
	}

	result := &BatchResult{}
	seenAssets := make(map[string]bool)
	entries := make([]metadata.Entry, 0, len(requests))
	mints := make([]mintEntry, 0, len(requests))
	for idx, req := range requests {
		if err := b.checkBatchItem(ctx, req, seenAssets); err != nil {
			result.Rejected = append(result.Rejected, RejectedItem{
				Index: idx,
				Err:   err,
			})
			b.metrics.batchRejected.Inc()
			continue
		}
		// An oversized document rejects only its own request
		if _, err := b.config.Composer.Compose(
			b.PolicyIdHex(),
			string(req.AssetName),
			req.Document,
		); err != nil {
			result.Rejected = append(result.Rejected, RejectedItem{
				Index: idx,
				Err:   err,
			})
			b.metrics.batchRejected.Inc()
			continue
		}
		seenAssets[string(req.AssetName)] = true
		result.Eligible = append(result.Eligible, BatchItem{
			Index:   idx,
			Request: req,
		})
		entries = append(entries, metadata.Entry{
			AssetName: string(req.AssetName),
			Document:  req.Document,
		})
		mints = append(mints, mintEntry{
			assetName: req.AssetName,
			recipient: req.RecipientAddress,
		})
	}
	if len(result.Eligible) == 0 {
		return nil, fmt.Errorf(
			"no eligible requests in batch of %d",
			len(requests),
		)
	}

	auxDataCbor, err := b.config.Composer.ComposeBatch(
		b.PolicyIdHex(),
		entries,
	)
	if err != nil {
		if errors.Is(err, metadata.ErrMetadataTooLarge) {
			return nil, fmt.Errorf(
				"%w: merged metadata over limit: %w",
				ErrBatchTooLarge,
				err,
			)
		}
		return nil, err
	}

	unsigned, err := b.assemble(ctx, w, mints, auxDataCbor, currentSlot)
	if err != nil {
		return nil, err
	}
	result.Unsigned = unsigned
	return result, nil
}

func (b *Builder) checkBatchItem(
	ctx context.Context,
	req MintRequest,
	seenAssets map[string]bool,
) error {
	if req.PrecheckErr != nil {
		return req.PrecheckErr
	}
	if len(req.AssetName) == 0 {
		return errors.New("missing asset name")
	}
	if req.RecipientAddress == "" {
		return errors.New("missing recipient address")
	}
	if seenAssets[string(req.AssetName)] {
		return fmt.Errorf(
			"%w: duplicate asset name in batch",
			ErrDuplicateMint,
		)
	}
	if b.config.Records != nil && req.StudentId != "" {
		minted, err := b.config.Records.Exists(
			ctx,
			req.StudentId,
			req.CourseId,
		)
		if err != nil {
			return err
		}
		if minted {
			return fmt.Errorf(
				"%w: student %s course %s",
				ErrDuplicateMint,
				req.StudentId,
				req.CourseId,
			)
		}
	}
	return nil
}
