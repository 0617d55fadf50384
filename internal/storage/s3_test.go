package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    []*s3.PutObjectInput
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func TestS3MissingObjectIsEmpty(t *testing.T) {
	store := newS3Store(newFakeObjects(), "decks", "", nil)
	assert.Equal(t, "flashcards.csv", store.key)

	rows, err := store.ListRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestS3AppendAndList(t *testing.T) {
	fake := newFakeObjects()
	store := newS3Store(fake, "decks", "team/cards.csv", nil)
	ctx := context.Background()

	require.NoError(t, store.AppendRow(ctx, Record{Question: "What is WACC?", Answer: "Weighted average cost of capital", Category: "Finance", Difficulty: "Easy"}))
	require.NoError(t, store.AppendRow(ctx, Record{Question: "What is EBITDA?", Answer: "Earnings before ...", Category: "Accounting", Difficulty: "Medium"}))

	assert.Equal(t,
		"question,answer,category,difficulty\n"+
			"What is WACC?,Weighted average cost of capital,Finance,Easy\n"+
			"What is EBITDA?,Earnings before ...,Accounting,Medium\n",
		string(fake.objects["decks/team/cards.csv"]))
	require.Len(t, fake.puts, 2)
	assert.Equal(t, "text/csv", aws.ToString(fake.puts[0].ContentType))

	rows, err := store.ListRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Accounting", rows[1]["category"])
}

func TestS3Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("access denied")

	fake := newFakeObjects()
	fake.getErr = boom
	store := newS3Store(fake, "decks", "cards.csv", nil)

	_, err := store.ListRows(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)

	err = store.AppendRow(ctx, Record{Question: "q", Answer: "a", Category: "c", Difficulty: "d"})
	assert.ErrorIs(t, err, ErrStoreWrite)

	fake.getErr = nil
	fake.putErr = boom
	err = store.AppendRow(ctx, Record{Question: "q", Answer: "a", Category: "c", Difficulty: "d"})
	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, fake.objects)
}
