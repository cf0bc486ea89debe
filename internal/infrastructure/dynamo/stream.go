package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
	"github.com/go-attendance-push/internal/domain"
	"github.com/go-attendance-push/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const timestampAttr = "timestamp"

// StreamsAPI is the subset of the DynamoDB Streams client used by StreamFeed.
type StreamsAPI interface {
	DescribeStream(ctx context.Context, params *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// TableDescriber resolves the latest stream ARN of a table.
type TableDescriber interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// RecordFetcher loads a notification record by key. Used for KEYS_ONLY streams.
type RecordFetcher interface {
	Get(ctx context.Context, notificationID string) (*domain.NotificationRecord, error)
}

// StreamFeedOptions configures a StreamFeed.
type StreamFeedOptions struct {
	// StreamARN is used as-is when set; otherwise it is resolved from TableName.
	StreamARN    string
	TableName    string
	PollInterval time.Duration
	ShardRefresh time.Duration
}

// StreamFeed delivers change batches from the notifications table stream.
// Every shard is polled on its own goroutine; handlers may therefore be
// called concurrently.
type StreamFeed struct {
	streams StreamsAPI
	tables  TableDescriber
	records RecordFetcher
	opts    StreamFeedOptions
	log     *zap.Logger
}

func NewStreamFeed(streams StreamsAPI, tables TableDescriber, records RecordFetcher, opts StreamFeedOptions, log *zap.Logger) *StreamFeed {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ShardRefresh <= 0 {
		opts.ShardRefresh = time.Minute
	}
	return &StreamFeed{streams: streams, tables: tables, records: records, opts: opts, log: logger.OrNop(log)}
}

// Subscribe polls the stream until ctx is cancelled or a shard fails.
// Shards open at subscribe time are read from LATEST so that only records
// added from now on are delivered; shards that appear later are read from
// TRIM_HORIZON. A nil return means ctx was cancelled.
func (f *StreamFeed) Subscribe(ctx context.Context, handle func([]domain.Change)) error {
	arn, err := f.resolveARN(ctx)
	if err != nil {
		return err
	}
	shards, err := f.listShards(ctx, arn)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[string]struct{})
	start := func(shards []streamtypes.Shard, iterType streamtypes.ShardIteratorType, skipClosed bool) {
		for _, s := range shards {
			shardID := aws.ToString(s.ShardId)
			if _, ok := seen[shardID]; ok {
				continue
			}
			seen[shardID] = struct{}{}
			if skipClosed && s.SequenceNumberRange != nil && s.SequenceNumberRange.EndingSequenceNumber != nil {
				continue
			}
			g.Go(func() error {
				return f.pollShard(gctx, arn, shardID, iterType, handle)
			})
		}
	}

	start(shards, streamtypes.ShardIteratorTypeLatest, true)
	f.log.Info("subscribed to notification stream", zap.String("stream_arn", arn), zap.Int("shards", len(seen)))

	g.Go(func() error {
		t := time.NewTicker(f.opts.ShardRefresh)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				shards, err := f.listShards(gctx, arn)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return err
				}
				start(shards, streamtypes.ShardIteratorTypeTrimHorizon, false)
			}
		}
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (f *StreamFeed) resolveARN(ctx context.Context) (string, error) {
	if f.opts.StreamARN != "" {
		return f.opts.StreamARN, nil
	}
	out, err := f.tables.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(f.opts.TableName),
	})
	if err != nil {
		return "", fmt.Errorf("describe table %s: %w", f.opts.TableName, err)
	}
	if out.Table == nil || aws.ToString(out.Table.LatestStreamArn) == "" {
		return "", fmt.Errorf("table %s has no stream enabled", f.opts.TableName)
	}
	return aws.ToString(out.Table.LatestStreamArn), nil
}

func (f *StreamFeed) listShards(ctx context.Context, arn string) ([]streamtypes.Shard, error) {
	var shards []streamtypes.Shard
	var startID *string
	for {
		out, err := f.streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
			StreamArn:             aws.String(arn),
			ExclusiveStartShardId: startID,
		})
		if err != nil {
			return nil, fmt.Errorf("describe stream: %w", err)
		}
		if out.StreamDescription == nil {
			return shards, nil
		}
		shards = append(shards, out.StreamDescription.Shards...)
		startID = out.StreamDescription.LastEvaluatedShardId
		if startID == nil {
			return shards, nil
		}
	}
}

func (f *StreamFeed) pollShard(ctx context.Context, arn, shardID string, iterType streamtypes.ShardIteratorType, handle func([]domain.Change)) error {
	it, err := f.streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
		StreamArn:         aws.String(arn),
		ShardId:           aws.String(shardID),
		ShardIteratorType: iterType,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("shard %s: get iterator: %w", shardID, err)
	}

	iter := it.ShardIterator
	for iter != nil {
		out, err := f.streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{ShardIterator: iter})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("shard %s: get records: %w", shardID, err)
		}
		if len(out.Records) > 0 {
			batch := make([]domain.Change, 0, len(out.Records))
			for _, r := range out.Records {
				batch = append(batch, f.toChange(ctx, r))
			}
			handle(batch)
		}
		iter = out.NextShardIterator
		if iter == nil {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.opts.PollInterval):
		}
	}
	f.log.Debug("shard closed", zap.String("shard_id", shardID))
	return nil
}

func (f *StreamFeed) toChange(ctx context.Context, r streamtypes.Record) domain.Change {
	c := domain.Change{Kind: changeKind(r.EventName)}
	if r.Dynamodb == nil {
		return c
	}
	if k, ok := r.Dynamodb.Keys["notification_id"].(*streamtypes.AttributeValueMemberS); ok {
		c.Key = k.Value
	}

	switch {
	case len(r.Dynamodb.NewImage) > 0:
		if err := f.decodeImage(r.Dynamodb.NewImage, &c.Record); err != nil {
			f.log.Debug("undecodable stream image", zap.String("key", c.Key), zap.Error(err))
			c.Record = domain.NotificationRecord{}
		}
	case c.Kind == domain.ChangeAdded && c.Key != "" && f.records != nil:
		rec, err := f.records.Get(ctx, c.Key)
		if err != nil {
			f.log.Debug("record not fetched", zap.String("key", c.Key), zap.Error(err))
			break
		}
		c.Record = *rec
	}
	if c.Record.ID == "" {
		c.Record.ID = c.Key
	}
	return c
}

// decodeImage unmarshals a stream image into rec. The timestamp is optional:
// when it alone fails to decode it is dropped and the rest of the record kept.
func (f *StreamFeed) decodeImage(image map[string]streamtypes.AttributeValue, rec *domain.NotificationRecord) error {
	item, err := attributevalue.FromDynamoDBStreamsMap(image)
	if err != nil {
		return err
	}
	err = attributevalue.UnmarshalMap(item, rec)
	if _, ok := item[timestampAttr]; err == nil || !ok {
		return err
	}

	f.log.Warn("ignoring undecodable notification timestamp", zap.Error(err))
	delete(item, timestampAttr)
	*rec = domain.NotificationRecord{}
	return attributevalue.UnmarshalMap(item, rec)
}

func changeKind(name streamtypes.OperationType) domain.ChangeKind {
	switch name {
	case streamtypes.OperationTypeInsert:
		return domain.ChangeAdded
	case streamtypes.OperationTypeModify:
		return domain.ChangeModified
	default:
		return domain.ChangeRemoved
	}
}
