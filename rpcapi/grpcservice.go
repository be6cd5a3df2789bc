package rpcapi

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aerosync/vertiport-routing/engine"
	"github.com/aerosync/vertiport-routing/engineerr"
)

// ServiceName is the gRPC service name every handler below is registered
// under; each handler passes its own full method name
// ("/" + ServiceName + "/" + method) to the interceptor chain, which the
// metrics interceptor splits into its labels.
const ServiceName = "arrow.routing.v1.RoutingService"

// GRPCService implements the nine query-surface operations over a
// hand-rolled grpc.ServiceDesc: every request/response is carried as a
// structpb.Struct (a real proto.Message with no code generation required),
// decoded into/from the same wire DTOs the REST transport uses via a JSON
// round trip through structpb's own map conversion. This lets the service
// be registered on a standard *grpc.Server without a .proto/protoc step.
type GRPCService struct {
	Engine *engine.Engine
}

// NewGRPCService constructs the handler set.
func NewGRPCService(e *engine.Engine) *GRPCService {
	return &GRPCService{Engine: e}
}

func decodeStruct(s *structpb.Struct, out interface{}) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("re-marshal request struct: %w", err)
	}
	return json.Unmarshal(raw, out)
}

func encodeStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("re-unmarshal response: %w", err)
	}
	return structpb.NewStruct(m)
}

func unaryHandler(fn func(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := &structpb.Struct{}
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(*GRPCService)

		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			out, err := fn(ctx, svc, req.(*structpb.Struct))
			if err != nil {
				return nil, engineerr.ToStatusError(err)
			}
			return encodeStruct(out)
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		fullMethod, ok := grpc.Method(ctx)
		if !ok {
			fullMethod = "/" + ServiceName
		}
		return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, handler)
	}
}

func isReadyHandler(ctx context.Context, svc *GRPCService, _ *structpb.Struct) (interface{}, error) {
	return map[string]bool{"ready": svc.Engine.IsReady(ctx)}, nil
}

func updateVertiportsHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body struct {
		Vertiports []VertiportWire `json:"vertiports"`
	}
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	if err := svc.Engine.UpdateVertiports(ctx, toVertiportUpdates(body.Vertiports)); err != nil {
		return nil, err
	}
	return map[string]bool{"ack": true}, nil
}

func updateWaypointsHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body struct {
		Waypoints []WaypointWire `json:"waypoints"`
	}
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	if err := svc.Engine.UpdateWaypoints(ctx, toWaypointUpdates(body.Waypoints)); err != nil {
		return nil, err
	}
	return map[string]bool{"ack": true}, nil
}

func updateZonesHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body struct {
		Zones []ZoneWire `json:"zones"`
	}
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	if err := svc.Engine.UpdateZones(ctx, toZoneUpdates(body.Zones)); err != nil {
		return nil, err
	}
	return map[string]bool{"ack": true}, nil
}

func updateFlightPathHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body FlightPathWire
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	if err := svc.Engine.UpdateFlightPath(ctx, toFlightPathUpdate(body)); err != nil {
		return nil, err
	}
	return map[string]bool{"ack": true}, nil
}

func updateAircraftPositionHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body AircraftPositionWire
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadTelemetry, err)
	}
	applied, err := svc.Engine.UpdateAircraftPosition(ctx, toAircraftPositionUpdate(body))
	if err != nil {
		return nil, err
	}
	return map[string]bool{"applied": applied}, nil
}

func bestPathHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body BestPathRequestWire
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	legs, err := svc.Engine.BestPath(ctx, toBestPathRequest(body))
	if err != nil {
		return nil, err
	}
	wire := make([]PathLegWire, len(legs))
	for i, l := range legs {
		wire[i] = toPathLegWire(l)
	}
	return BestPathResponseWire{Legs: wire}, nil
}

func checkIntersectionHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body CheckIntersectionRequestWire
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	intersects, err := svc.Engine.CheckIntersection(ctx, toIntersectionRequest(body))
	if err != nil {
		return nil, err
	}
	return map[string]bool{"intersects": intersects}, nil
}

func getFlightsHandler(ctx context.Context, svc *GRPCService, req *structpb.Struct) (interface{}, error) {
	var body GetFlightsRequestWire
	if err := decodeStruct(req, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", engineerr.ErrBadGeometry, err)
	}
	states, err := svc.Engine.GetFlights(ctx, toGetFlightsRequest(body))
	if err != nil {
		return nil, err
	}
	wire := make([]FlightWire, len(states))
	for i, st := range states {
		wire[i] = FlightWire{
			Callsign: st.Callsign, Lat: st.Position.Lat, Lon: st.Position.Lon,
			AltM: st.Position.AltM, Timestamp: st.Timestamp, FlightPathID: st.FlightPathID,
		}
	}
	return map[string]interface{}{"flights": wire}, nil
}

// ServiceDesc is the hand-rolled grpc.ServiceDesc registered directly on a
// *grpc.Server via grpc.Server.RegisterService, in place of a
// protoc-generated _grpc.pb.go.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "IsReady", Handler: unaryHandler(isReadyHandler)},
		{MethodName: "UpdateVertiports", Handler: unaryHandler(updateVertiportsHandler)},
		{MethodName: "UpdateWaypoints", Handler: unaryHandler(updateWaypointsHandler)},
		{MethodName: "UpdateZones", Handler: unaryHandler(updateZonesHandler)},
		{MethodName: "UpdateFlightPath", Handler: unaryHandler(updateFlightPathHandler)},
		{MethodName: "UpdateAircraftPosition", Handler: unaryHandler(updateAircraftPositionHandler)},
		{MethodName: "BestPath", Handler: unaryHandler(bestPathHandler)},
		{MethodName: "CheckIntersection", Handler: unaryHandler(checkIntersectionHandler)},
		{MethodName: "GetFlights", Handler: unaryHandler(getFlightsHandler)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpcapi/routing.proto",
}

// RegisterRoutingServiceServer registers svc on server using ServiceDesc.
func RegisterRoutingServiceServer(server *grpc.Server, svc *GRPCService) {
	server.RegisterService(&ServiceDesc, svc)
}
