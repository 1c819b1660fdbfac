package directory

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/alfredjeanlab/tether/internal/model"
)

// getAccountMethod is the full method name exposed by the account service.
const getAccountMethod = "/tether.directory.v1.AccountDirectory/GetAccount"

const rawCodecName = "raw"

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// rawMessage carries an already-encoded protobuf frame through the gRPC codec.
type rawMessage struct {
	data []byte
}

// rawCodec passes message bytes through unchanged. The account service speaks
// plain protobuf; the frames here are built with protowire, so no generated
// stubs are needed.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(*rawMessage)
	if !ok {
		return nil, fmt.Errorf("raw codec: unexpected message type %T", v)
	}
	return m.data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(*rawMessage)
	if !ok {
		return fmt.Errorf("raw codec: unexpected message type %T", v)
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string { return rawCodecName }

// GRPCDirectory implements Directory against the account service's gRPC API.
type GRPCDirectory struct {
	conn *grpc.ClientConn
}

// NewGRPCDirectory connects to the given gRPC address and returns a client.
func NewGRPCDirectory(addr string) (*GRPCDirectory, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCDirectory{conn: conn}, nil
}

func (d *GRPCDirectory) GetAccount(ctx context.Context, id string) (*Account, error) {
	req := rawMessage{data: encodeGetAccountRequest(id)}
	var resp rawMessage
	err := d.conn.Invoke(ctx, getAccountMethod, &req, &resp, grpc.CallContentSubtype(rawCodecName))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, &model.NotFoundError{Entity: "account", ID: id}
		}
		return nil, &model.UpstreamError{Cause: err}
	}

	account, err := decodeAccount(resp.data)
	if err != nil {
		return nil, &model.UpstreamError{Cause: err}
	}
	return account, nil
}

func (d *GRPCDirectory) Close() error {
	return d.conn.Close()
}

// encodeGetAccountRequest builds a GetAccountRequest frame:
//
//	field 1 (string): account_id
func encodeGetAccountRequest(id string) []byte {
	buf := protowire.AppendTag(nil, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, id)
	return buf
}

// decodeAccount parses an Account frame:
//
//	field 1 (string): id
//	field 2 (varint): active
//
// Unknown fields are skipped so the account service can grow its message.
func decodeAccount(data []byte) (*Account, error) {
	var a Account
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("decode account: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, fmt.Errorf("decode account id: %w", protowire.ParseError(n))
			}
			a.ID = v
			data = data[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("decode account active: %w", protowire.ParseError(n))
			}
			a.Active = v != 0
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("decode account field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return &a, nil
}
