package isoremesh

// ProjectToSurface snaps every live vertex of m onto the closest point of
// the reference mesh behind grid, within a search radius of 1.5*maxSurfDist
// (§4.7). Vertices for which the query misses stay where they are; a later
// iteration, or a subsequent surface-distance check, surfaces the gap -
// this function itself never errors. If selectedOnly is true, only
// vertices every incident face of which is selected are moved.
func ProjectToSurface(m *Mesh, grid *SpatialGrid, maxSurfDist float64, selectedOnly bool) {
	radius := 1.5 * maxSurfDist
	for i := range m.Vertices {
		v := &m.Vertices[i]
		if v.Deleted {
			continue
		}
		if selectedOnly && !allFacesSelected(m, m.IncidentFaces(i)) {
			continue
		}
		foot, _, _, ok := grid.ClosestFace(v.Position, radius)
		if !ok {
			continue
		}
		v.Position = foot
	}
}
