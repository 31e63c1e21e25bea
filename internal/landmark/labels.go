package landmark

import "strconv"

// Label identifies a named anatomical point on a face. The compact
// key-point set uses the named labels below; the dense mesh additionally
// carries index-based labels produced by MeshLabel. Both set kinds share
// the named labels, so scoring works across mixed densities.
type Label string

const (
	NoseTip       Label = "nose_tip"
	Chin          Label = "chin"
	LeftEyeOuter  Label = "left_eye_outer"
	LeftEyeInner  Label = "left_eye_inner"
	RightEyeInner Label = "right_eye_inner"
	RightEyeOuter Label = "right_eye_outer"
	MouthLeft     Label = "mouth_left"
	MouthRight    Label = "mouth_right"

	LeftEyeTop     Label = "left_eye_top"
	LeftEyeBottom  Label = "left_eye_bottom"
	RightEyeTop    Label = "right_eye_top"
	RightEyeBottom Label = "right_eye_bottom"
	LeftIris       Label = "left_iris"
	RightIris      Label = "right_iris"
	NoseBridge     Label = "nose_bridge"
	NoseBottom     Label = "nose_bottom"
	NoseLeft       Label = "nose_left"
	NoseRight      Label = "nose_right"
	MouthTop       Label = "mouth_top"
	MouthBottom    Label = "mouth_bottom"
	JawLeft        Label = "jaw_left"
	JawRight       Label = "jaw_right"

	LeftEyebrowInner  Label = "left_eyebrow_inner"
	LeftEyebrowOuter  Label = "left_eyebrow_outer"
	RightEyebrowInner Label = "right_eyebrow_inner"
	RightEyebrowOuter Label = "right_eyebrow_outer"
	LeftCheek         Label = "left_cheek"
	RightCheek        Label = "right_cheek"
	Forehead          Label = "forehead"
	LeftTemple        Label = "left_temple"
	RightTemple       Label = "right_temple"
	FaceLeft          Label = "face_left"
	FaceRight         Label = "face_right"
)

// KeyLabels lists the 33 named key points in canonical order. The order
// is load-bearing: signature vectors flatten coordinates in this order.
var KeyLabels = []Label{
	NoseTip, Chin,
	LeftEyeOuter, LeftEyeInner, RightEyeInner, RightEyeOuter,
	MouthLeft, MouthRight,
	LeftEyeTop, LeftEyeBottom, RightEyeTop, RightEyeBottom,
	LeftIris, RightIris,
	NoseBridge, NoseBottom, NoseLeft, NoseRight,
	MouthTop, MouthBottom,
	JawLeft, JawRight,
	LeftEyebrowInner, LeftEyebrowOuter, RightEyebrowInner, RightEyebrowOuter,
	LeftCheek, RightCheek,
	Forehead, LeftTemple, RightTemple,
	FaceLeft, FaceRight,
}

// CoreLabels are the points every scoreable set must carry (eyes, nose,
// mouth, chin). Sets missing any of these are rejected before scoring.
var CoreLabels = []Label{
	LeftEyeOuter, RightEyeOuter, NoseTip, MouthLeft, MouthRight, Chin,
}

// DenseMeshSize is the point count of the full landmark mesh.
const DenseMeshSize = 468

// MeshLabel returns the label for the i-th point of the dense mesh.
func MeshLabel(i int) Label {
	return Label("m" + strconv.Itoa(i))
}
