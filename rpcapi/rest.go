package rpcapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aerosync/vertiport-routing/engine"
	"github.com/aerosync/vertiport-routing/engineerr"
	"github.com/aerosync/vertiport-routing/internal/logging"
)

// RESTServer exposes the nine query-surface operations over JSON/HTTP,
// grounded in Mikey-gotcode-ma3tracker's route_controller.go handler shape:
// ShouldBindJSON for the body, engineerr.HTTPStatus for error mapping.
type RESTServer struct {
	Engine *engine.Engine
	Log    logging.Logger
}

// NewRESTServer builds a gin.Engine wired to the nine operations.
func NewRESTServer(e *engine.Engine, log logging.Logger) *gin.Engine {
	if log == nil {
		log = logging.Noop()
	}
	s := &RESTServer{Engine: e, Log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/readyz", s.isReady)
	r.POST("/vertiports", s.updateVertiports)
	r.POST("/waypoints", s.updateWaypoints)
	r.POST("/zones", s.updateZones)
	r.POST("/flight-paths", s.updateFlightPath)
	r.POST("/aircraft/position", s.updateAircraftPosition)
	r.POST("/best-path", s.bestPath)
	r.POST("/check-intersection", s.checkIntersection)
	r.GET("/flights", s.getFlights)

	return r
}

func (s *RESTServer) isReady(c *gin.Context) {
	if !s.Engine.IsReady(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func (s *RESTServer) fail(c *gin.Context, err error) {
	s.Log.Warn(c.Request.Context(), "request failed", logging.String("error", err.Error()))
	c.JSON(engineerr.HTTPStatus(err), gin.H{"error": err.Error()})
}

func (s *RESTServer) updateVertiports(c *gin.Context) {
	var body struct {
		Vertiports []VertiportWire `json:"vertiports" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upds := toVertiportUpdates(body.Vertiports)
	if err := s.Engine.UpdateVertiports(c.Request.Context(), upds); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ack": true})
}

func (s *RESTServer) updateWaypoints(c *gin.Context) {
	var body struct {
		Waypoints []WaypointWire `json:"waypoints" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upds := toWaypointUpdates(body.Waypoints)
	if err := s.Engine.UpdateWaypoints(c.Request.Context(), upds); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ack": true})
}

func (s *RESTServer) updateZones(c *gin.Context) {
	var body struct {
		Zones []ZoneWire `json:"zones" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upds := toZoneUpdates(body.Zones)
	if err := s.Engine.UpdateZones(c.Request.Context(), upds); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ack": true})
}

func (s *RESTServer) updateFlightPath(c *gin.Context) {
	var body FlightPathWire
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Engine.UpdateFlightPath(c.Request.Context(), toFlightPathUpdate(body)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ack": true})
}

func (s *RESTServer) updateAircraftPosition(c *gin.Context) {
	var body AircraftPositionWire
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applied, err := s.Engine.UpdateAircraftPosition(c.Request.Context(), toAircraftPositionUpdate(body))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (s *RESTServer) bestPath(c *gin.Context) {
	var body BestPathRequestWire
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	legs, err := s.Engine.BestPath(c.Request.Context(), toBestPathRequest(body))
	if err != nil {
		s.fail(c, err)
		return
	}
	wire := make([]PathLegWire, len(legs))
	for i, l := range legs {
		wire[i] = toPathLegWire(l)
	}
	c.JSON(http.StatusOK, BestPathResponseWire{Legs: wire})
}

func (s *RESTServer) checkIntersection(c *gin.Context) {
	var body CheckIntersectionRequestWire
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	intersects, err := s.Engine.CheckIntersection(c.Request.Context(), toIntersectionRequest(body))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intersects": intersects})
}

func (s *RESTServer) getFlights(c *gin.Context) {
	var body GetFlightsRequestWire
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	states, err := s.Engine.GetFlights(c.Request.Context(), toGetFlightsRequest(body))
	if err != nil {
		s.fail(c, err)
		return
	}
	wire := make([]FlightWire, len(states))
	for i, st := range states {
		wire[i] = FlightWire{
			Callsign: st.Callsign, Lat: st.Position.Lat, Lon: st.Position.Lon,
			AltM: st.Position.AltM, Timestamp: st.Timestamp, FlightPathID: st.FlightPathID,
		}
	}
	c.JSON(http.StatusOK, gin.H{"flights": wire})
}
